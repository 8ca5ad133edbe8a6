package model

import "time"

// Roles carried in the Firebase "role" custom claim.
const (
	RoleAdmin   = "admin"
	RoleManager = "manager"
	RoleStaff   = "staff"
)

// ValidRole reports whether r is one of the known roles.
func ValidRole(r string) bool {
	return r == RoleAdmin || r == RoleManager || r == RoleStaff
}

// User mirrors a Firebase Auth account in the users collection.
type User struct {
	UID         string    `firestore:"-"`
	Email       string    `firestore:"email"`
	DisplayName string    `firestore:"displayName"`
	Role        string    `firestore:"role"`
	Active      bool      `firestore:"active"`
	CreatedAt   time.Time `firestore:"createdAt"`
	UpdatedAt   time.Time `firestore:"updatedAt"`
}

// Actor is the authenticated caller of a service operation. System work
// (scheduled sync, webhooks) runs as SystemActor.
type Actor struct {
	UID   string
	Name  string
	Email string
	Role  string
}

// SystemActor attributes background work in the activity log.
var SystemActor = Actor{UID: "system", Name: "System", Role: RoleAdmin}
