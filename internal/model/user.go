package model

import "time"

// Roles assigned to application users.  The back office is restricted
// to ADMIN; the booking flow is available to any authenticated user.
const (
	RoleAdmin    = "ADMIN"
	RoleCustomer = "CUSTOMER"
)

// User represents an application user record as stored in the `users`
// table.  Each field corresponds to a column in the database.  The json
// tags are omitted here because these structs are primarily used
// internally by the repository layer; handlers define separate response
// types with appropriate JSON tags.
//
// Fields:
//  ID           – primary key identifier of the user.
//  FirstName    – given name.
//  LastName     – family name.
//  DisplayName  – name shown in the UI; may come from the identity provider.
//  Email        – unique email address.
//  PasswordHash – bcrypt hashed password; empty for users provisioned
//                 through the identity-provider bridge who never set one.
//  Role         – role name (ADMIN or CUSTOMER), fixed at creation.
//  FirebaseUID  – identity-provider subject, when the account was
//                 created or linked through the auth bridge.
//  PhotoURL     – optional avatar URL from the identity provider.
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type User struct {
	ID           uint64    // users.id
	FirstName    string    // users.first_name
	LastName     string    // users.last_name
	DisplayName  string    // users.display_name
	Email        string    // users.email
	PasswordHash string    // users.password_hash
	Role         string    // users.role
	FirebaseUID  *string   // users.firebase_uid (nullable)
	PhotoURL     *string   // users.photo_url (nullable)
	CreatedAt    time.Time // users.created_at
	UpdatedAt    time.Time // users.updated_at
}

// RefreshToken models an entry in the `refresh_tokens` table.  Each
// refresh token belongs to a user and contains metadata for expiry
// and revocation.  The plain token is not stored; only its
// SHA‑256 hash.
//
// Fields:
//  ID        – primary key identifier.
//  UserID    – owner of the token.
//  TokenHash – SHA‑256 hex digest of the token value.
//  ExpiresAt – expiration timestamp of the token.
//  RevokedAt – when the token was revoked (null if still active).
//  CreatedAt – timestamp of creation.
type RefreshToken struct {
	ID        uint64     // refresh_tokens.id
	UserID    uint64     // refresh_tokens.user_id
	TokenHash string     // refresh_tokens.token_hash
	ExpiresAt time.Time  // refresh_tokens.expires_at
	RevokedAt *time.Time // refresh_tokens.revoked_at (nullable)
	CreatedAt time.Time  // refresh_tokens.created_at
}
