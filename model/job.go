package model

// JobPosting is a job-board entry. Only its location participates in
// distance ranking; everything else is opaque metadata owned by the
// job-board collaborator.
type JobPosting struct {
	ID       string
	Title    string
	Location Coordinate

	// Metadata carries job-board fields the attendance core does not
	// interpret (salary, hours, deadline, ...).
	Metadata map[string]string
}
