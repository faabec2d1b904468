// Package memory is an in-process store used by tests and the memory driver.
package memory

import (
	"sync"

	"github.com/google/uuid"

	"github.com/kelibin/secretaria/internal/app/models"
	"github.com/kelibin/secretaria/internal/app/repositories"
)

// DB holds every table behind a single lock so cross-table reads
// (student with subject, cascading deletes) see a consistent state.
type DB struct {
	mu sync.RWMutex

	students    *table[models.Student]
	subjects    *table[models.Subject]
	enrollments *table[models.Enrollment]
	accounts    *table[models.Account]
}

// table keeps rows by id and remembers insertion order for listings
type table[T any] struct {
	rows  map[string]*T
	order []string
}

func newTable[T any]() *table[T] {
	return &table[T]{rows: make(map[string]*T)}
}

func (t *table[T]) insert(id string, row *T) {
	t.rows[id] = row
	t.order = append(t.order, id)
}

func (t *table[T]) remove(id string) bool {
	if _, ok := t.rows[id]; !ok {
		return false
	}
	delete(t.rows, id)
	for i, v := range t.order {
		if v == id {
			t.order = append(t.order[:i], t.order[i+1:]...)
			break
		}
	}
	return true
}

// each visits rows in insertion order until fn returns false
func (t *table[T]) each(fn func(*T) bool) {
	for _, id := range t.order {
		if !fn(t.rows[id]) {
			return
		}
	}
}

// Open returns an empty database
func Open() *DB {
	return &DB{
		students:    newTable[models.Student](),
		subjects:    newTable[models.Subject](),
		enrollments: newTable[models.Enrollment](),
		accounts:    newTable[models.Account](),
	}
}

// NewRepositories wires every memory repository over one DB
func NewRepositories(db *DB) *repositories.Repositories {
	return &repositories.Repositories{
		Students:    &StudentRepository{db: db},
		Subjects:    &SubjectRepository{db: db},
		Enrollments: &EnrollmentRepository{db: db},
		Accounts:    &AccountRepository{db: db},
	}
}

func newID() string {
	return uuid.NewString()
}
