package repositories

import (
	"artist-hub/domain"
	"artist-hub/errors"
	"encoding/json"
	goerrors "errors"
	"fmt"
	"sort"

	"github.com/dgraph-io/badger/v4"
)

const projectPrefix = "project:"

type IProjectRepository interface {
	SaveProject(project StoredProject) error
	GetProject(id string) (StoredProject, error)
	ListProjects(owner domain.UserID) ([]StoredProject, error)
	DeleteProject(id string) error
}

// StoredProject is a project together with the user who owns it.
type StoredProject struct {
	Owner   domain.UserID  `json:"owner"`
	Project domain.Project `json:"project"`
}

type ProjectRepository struct {
	db *badger.DB
}

func NewProjectRepository(db *badger.DB) ProjectRepository {
	return ProjectRepository{db: db}
}

func (r ProjectRepository) SaveProject(project StoredProject) error {
	bytes, err := json.Marshal(project)
	if err != nil {
		return fmt.Errorf("marshal failed: %w", err)
	}
	return r.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(projectPrefix+project.Project.ID), bytes)
	})
}

func (r ProjectRepository) GetProject(id string) (StoredProject, error) {
	var stored StoredProject
	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(projectPrefix + id))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &stored)
		})
	})
	if goerrors.Is(err, badger.ErrKeyNotFound) {
		return StoredProject{}, fmt.Errorf("%w: project %s", errors.ErrNotFound, id)
	}
	return stored, err
}

// ListProjects returns the owner's projects by creation time.
func (r ProjectRepository) ListProjects(owner domain.UserID) ([]StoredProject, error) {
	var projects []StoredProject
	err := r.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte(projectPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var stored StoredProject
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &stored)
			}); err != nil {
				return err
			}
			if stored.Owner == owner {
				projects = append(projects, stored)
			}
		}
		return nil
	})
	sort.SliceStable(projects, func(i, j int) bool {
		return projects[i].Project.Timeline.Created.Before(projects[j].Project.Timeline.Created)
	})
	return projects, err
}

func (r ProjectRepository) DeleteProject(id string) error {
	return r.db.Update(func(txn *badger.Txn) error {
		key := []byte(projectPrefix + id)
		if _, err := txn.Get(key); err != nil {
			if goerrors.Is(err, badger.ErrKeyNotFound) {
				return fmt.Errorf("%w: project %s", errors.ErrNotFound, id)
			}
			return err
		}
		return txn.Delete(key)
	})
}
