package identity

import "time"

type Role string

const (
	RoleOperator Role = "operator"
	RoleManager  Role = "manager"
)

// Identity is a member of the fixed roster. Password carries the legacy
// plaintext credential until the first successful login replaces it with
// PasswordHash; exactly one of the two is populated for a healthy row.
type Identity struct {
	ID           string    `gorm:"column:id;primaryKey;type:varchar(32)"`
	Username     string    `gorm:"column:username;uniqueIndex;type:varchar(100);not null"`
	DisplayName  string    `gorm:"column:display_name;type:varchar(100);not null"`
	Role         Role      `gorm:"column:role;type:varchar(20);not null"`
	Password     string    `gorm:"column:password;type:varchar(100)"`
	PasswordHash string    `gorm:"column:password_hash;type:varchar(100)"`
	CreatedAt    time.Time `gorm:"autoCreateTime"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime"`
}

func (Identity) TableName() string {
	return "identities"
}

func (i Identity) IsManager() bool {
	return i.Role == RoleManager
}

// seedRoster is the bootstrap roster for an empty store. It exists only as
// seed data; credential checks always go through the store.
var seedRoster = []Identity{
	{Username: "julio.yroba", DisplayName: "Julio Yroba", Role: RoleOperator, Password: "jefe123"},
	{Username: "jose.quintero", DisplayName: "José Quintero", Role: RoleOperator, Password: "jefe123"},
	{Username: "matias.riquelme", DisplayName: "Matías Riquelme", Role: RoleOperator, Password: "jefe123"},
	{Username: "gerente.proyectos", DisplayName: "Gerente de Proyectos", Role: RoleManager, Password: "gerente123"},
	{Username: "gerente.general", DisplayName: "Gerente General", Role: RoleManager, Password: "admin123"},
}
