package model

import "time"

type StaffRole string

const (
	RoleHairStylist      StaffRole = "hair_stylist"
	RoleBeautician       StaffRole = "beautician"
	RoleNailTechnician   StaffRole = "nail_technician"
	RoleMassageTherapist StaffRole = "massage_therapist"
	RoleReceptionist     StaffRole = "receptionist" // administrative, performs no services
	RoleManager          StaffRole = "manager"      // administrative, performs no services
)

type StaffMember struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	Role      StaffRole `json:"role"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
