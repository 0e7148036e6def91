package records

// Repository persists build records across runs. LoadLatest returns nil
// when no previous build exists.
type Repository interface {
	LoadLatest() (*Record, error)
	Save(record *Record) error
}
