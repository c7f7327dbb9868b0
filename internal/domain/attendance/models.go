package attendance

import "time"

type Record struct {
	ID           string     `json:"id"`
	EmployeeID   string     `json:"employeeId"`
	CompanyID    string     `json:"companyId"`
	DepartmentID string     `json:"departmentId"`
	WorkDate     time.Time  `json:"workDate"`
	CheckIn      time.Time  `json:"checkIn"`
	CheckOut     *time.Time `json:"checkOut,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
}

// Hours reports the worked span in hours, zero while the day is still open.
func (r Record) Hours() float64 {
	if r.CheckOut == nil {
		return 0
	}
	return r.CheckOut.Sub(r.CheckIn).Hours()
}
