package memstore

// Store bundles one of each in-memory repository.
type Store struct {
	Users      *Users
	Roles      *Roles
	Sessions   *Sessions
	ResetCodes *ResetCodes
	Audit      *Audit
	Cache      *Cache
	Mailer     *Mailer
	Images     *Images
}

func New() *Store {
	users := NewUsers()
	return &Store{
		Users:      users,
		Roles:      NewRoles(),
		Sessions:   NewSessions(),
		ResetCodes: NewResetCodes(),
		Audit:      NewAudit(users),
		Cache:      NewCache(),
		Mailer:     &Mailer{},
		Images:     NewImages(),
	}
}
