package entities

// The structs below mirror the records of each kind for callers that want
// typed access through resource.Typed. Timestamps stay strings so records
// round-trip without a time codec.

// EmployeeType represents an employment category such as "Full Time"
type EmployeeType struct {
	ID          string `json:"id,omitempty"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	CreatedAt   string `json:"created_at,omitempty"`
	UpdatedAt   string `json:"updated_at,omitempty"`
}

// Designation represents a job title within a department
type Designation struct {
	ID          string `json:"id,omitempty"`
	Name        string `json:"name"`
	Department  string `json:"department,omitempty"`
	Description string `json:"description,omitempty"`
	CreatedAt   string `json:"created_at,omitempty"`
	UpdatedAt   string `json:"updated_at,omitempty"`
}

type Skill struct {
	ID        string `json:"id,omitempty"`
	Name      string `json:"name"`
	Category  string `json:"category,omitempty"`
	CreatedAt string `json:"created_at,omitempty"`
	UpdatedAt string `json:"updated_at,omitempty"`
}

type EducationLevel struct {
	ID          string `json:"id,omitempty"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	CreatedAt   string `json:"created_at,omitempty"`
	UpdatedAt   string `json:"updated_at,omitempty"`
}

// ExperienceLevel is a named band of years of experience
type ExperienceLevel struct {
	ID        string `json:"id,omitempty"`
	Name      string `json:"name"`
	MinYears  int    `json:"min_years"`
	MaxYears  int    `json:"max_years,omitempty"`
	CreatedAt string `json:"created_at,omitempty"`
	UpdatedAt string `json:"updated_at,omitempty"`
}

type HiringSource struct {
	ID          string `json:"id,omitempty"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	CreatedAt   string `json:"created_at,omitempty"`
	UpdatedAt   string `json:"updated_at,omitempty"`
}

// WorkShift holds shift boundaries as HH:MM wall-clock times
type WorkShift struct {
	ID        string `json:"id,omitempty"`
	Name      string `json:"name"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	CreatedAt string `json:"created_at,omitempty"`
	UpdatedAt string `json:"updated_at,omitempty"`
}

type JobLocationType struct {
	ID          string `json:"id,omitempty"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	CreatedAt   string `json:"created_at,omitempty"`
	UpdatedAt   string `json:"updated_at,omitempty"`
}

type Country struct {
	ID        string `json:"id,omitempty"`
	Name      string `json:"name"`
	Code      string `json:"code"`
	DialCode  string `json:"dial_code,omitempty"`
	CreatedAt string `json:"created_at,omitempty"`
	UpdatedAt string `json:"updated_at,omitempty"`
}

type Bank struct {
	ID        string `json:"id,omitempty"`
	Name      string `json:"name"`
	SwiftCode string `json:"swift_code,omitempty"`
	CreatedAt string `json:"created_at,omitempty"`
	UpdatedAt string `json:"updated_at,omitempty"`
}

type Salutation struct {
	ID        string `json:"id,omitempty"`
	Name      string `json:"name"`
	CreatedAt string `json:"created_at,omitempty"`
	UpdatedAt string `json:"updated_at,omitempty"`
}

type Role struct {
	ID          string `json:"id,omitempty"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	CreatedAt   string `json:"created_at,omitempty"`
	UpdatedAt   string `json:"updated_at,omitempty"`
}
