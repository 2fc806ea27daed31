package db

import (
	"github.com/ayushraiyani0003/HRCentral-sub004/internal/db/interfaces"
	"github.com/ayushraiyani0003/HRCentral-sub004/internal/entities"
)

// Fixtures provides sample master data per kind for seeding
var Fixtures = map[string][]map[string]interface{}{
	"employee-types": {
		{"name": "Full Time", "description": "Permanent employee on payroll"},
		{"name": "Part Time", "description": "Works reduced weekly hours"},
		{"name": "Contract", "description": "Fixed-term engagement"},
		{"name": "Intern"},
	},
	"designations": {
		{"name": "Software Engineer", "department": "Engineering"},
		{"name": "Engineering Manager", "department": "Engineering"},
		{"name": "HR Executive", "department": "Human Resources"},
		{"name": "Accountant", "department": "Finance"},
	},
	"skills": {
		{"name": "Go", "category": "Technical"},
		{"name": "PostgreSQL", "category": "Technical"},
		{"name": "Negotiation", "category": "Soft"},
		{"name": "Public Speaking", "category": "Soft"},
	},
	"education-levels": {
		{"name": "High School"},
		{"name": "Bachelor's Degree"},
		{"name": "Master's Degree"},
		{"name": "Doctorate"},
	},
	"experience-levels": {
		{"name": "Fresher", "min_years": 0, "max_years": 1},
		{"name": "Junior", "min_years": 1, "max_years": 3},
		{"name": "Mid", "min_years": 3, "max_years": 6},
		{"name": "Senior", "min_years": 6},
	},
	"hiring-sources": {
		{"name": "Referral", "description": "Recommended by an employee"},
		{"name": "Job Portal"},
		{"name": "Campus Drive"},
		{"name": "Walk-in"},
	},
	"work-shifts": {
		{"name": "General", "start_time": "09:30", "end_time": "18:30"},
		{"name": "Morning", "start_time": "06:00", "end_time": "14:00"},
		{"name": "Night", "start_time": "22:00", "end_time": "06:00"},
	},
	"job-location-types": {
		{"name": "On-site"},
		{"name": "Remote"},
		{"name": "Hybrid"},
	},
	"countries": {
		{"name": "India", "code": "IN", "dial_code": "+91"},
		{"name": "United States", "code": "US", "dial_code": "+1"},
		{"name": "Germany", "code": "DE", "dial_code": "+49"},
	},
	"banks": {
		{"name": "HDFC Bank", "swift_code": "HDFCINBB"},
		{"name": "State Bank of India", "swift_code": "SBININBB"},
		{"name": "Deutsche Bank", "swift_code": "DEUTDEFF"},
	},
	"salutations": {
		{"name": "Mr."},
		{"name": "Ms."},
		{"name": "Mrs."},
		{"name": "Dr."},
	},
	"roles": {
		{"name": "Administrator", "description": "Full access to master data"},
		{"name": "HR Manager", "description": "Manages employee records"},
		{"name": "Viewer", "description": "Read-only access"},
	},
}

// AllSchemas returns all entity schemas for migration
func AllSchemas() []*interfaces.Schema {
	return entities.Schemas()
}
