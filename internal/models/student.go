package models

// StudentSnapshot is the student projection returned by the student service.
type StudentSnapshot struct {
	StudentID string `json:"studentId"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Program   string `json:"program"`
}

// FullName joins the display name parts.
func (s StudentSnapshot) FullName() string {
	switch {
	case s.FirstName == "":
		return s.LastName
	case s.LastName == "":
		return s.FirstName
	default:
		return s.FirstName + " " + s.LastName
	}
}
