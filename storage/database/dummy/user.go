package dummydb

import (
	"context"
	"sort"
	"strings"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/user"
)

type userRepository struct {
	db *DB
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db *DB) user.Repository {
	return &userRepository{db: db}
}

func (repo *userRepository) query() []user.User {
	users := make([]user.User, 0, len(repo.db.users))
	for _, u := range repo.db.users {
		users = append(users, *u)
	}
	return users
}

func (repo *userRepository) CheckEmailUniqueness(ctx context.Context, email string, excludedUsers ...user.User) error {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, usr := range repo.query() {
		if usr.Email != email {
			continue
		}
		excluded := false
		for _, excl := range excludedUsers {
			if excl.ID == usr.ID {
				excluded = true
				break
			}
		}
		if !excluded {
			return user.ErrEmailExists
		}
	}
	return nil
}

func (repo *userRepository) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.userPK++
	usr.ID = repo.db.userPK
	repo.db.users[usr.ID] = &usr
	return usr, nil
}

func (repo *userRepository) QueryAllUsers(ctx context.Context, orderings ...core.DBOrdering) ([]user.User, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	users := repo.query()
	sortUsers(users, orderings)
	return users, nil
}

func (repo *userRepository) QueryUserNames(ctx context.Context) ([]user.Name, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	names := make([]user.Name, 0, len(repo.db.users))
	for _, usr := range repo.db.users {
		names = append(names, user.Name{ID: usr.ID, Name: usr.Name})
	}
	sort.Slice(names, func(i, j int) bool {
		if names[i].Name == names[j].Name {
			return names[i].ID < names[j].ID
		}
		return names[i].Name < names[j].Name
	})
	return names, nil
}

func (repo *userRepository) GetUserByID(ctx context.Context, id int) (user.User, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if usr, ok := repo.db.users[id]; ok {
		return *usr, nil
	}
	return user.User{}, user.ErrNotFound
}

func (repo *userRepository) GetUserByEmail(ctx context.Context, email string) (user.User, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, usr := range repo.query() {
		if usr.Email == email {
			return usr, nil
		}
	}
	return user.User{}, user.ErrNotFound
}

func (repo *userRepository) UpdateUser(ctx context.Context, usr user.User) (user.User, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.users[usr.ID]; !ok {
		return user.User{}, user.ErrNotFound
	}
	repo.db.users[usr.ID] = &usr
	return usr, nil
}

func (repo *userRepository) DeleteUserByID(ctx context.Context, id int) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.users[id]; !ok {
		return user.ErrNotFound
	}
	delete(repo.db.users, id)
	for topicID, members := range repo.db.topicMembers {
		repo.db.topicMembers[topicID] = remove(members, id)
	}
	return nil
}

func (repo *userRepository) CountAuthoredContent(ctx context.Context, id int) (user.ContentCounts, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	var counts user.ContentCounts
	for _, tpc := range repo.db.topics {
		if tpc.CreatedBy == id {
			counts.Topics++
		}
	}
	for _, sess := range repo.db.sessions {
		if sess.PresenterID == id {
			counts.Sessions++
		}
	}
	for _, itr := range repo.db.interactions {
		if itr.AuthorID == id {
			counts.Interactions++
		}
	}
	return counts, nil
}

func sortUsers(users []user.User, orderings []core.DBOrdering) {
	if len(orderings) == 0 {
		orderings = []core.DBOrdering{{Field: "created_at"}}
	}
	sort.Slice(users, func(i, j int) bool {
		for _, ord := range orderings {
			var cmp int
			switch ord.Field {
			case "name":
				cmp = strings.Compare(users[i].Name, users[j].Name)
			case "email":
				cmp = strings.Compare(users[i].Email, users[j].Email)
			case "role":
				cmp = strings.Compare(users[i].Role, users[j].Role)
			default: // created_at
				switch {
				case users[i].CreatedAt.Before(users[j].CreatedAt.Time):
					cmp = -1
				case users[i].CreatedAt.After(users[j].CreatedAt.Time):
					cmp = 1
				}
			}
			if cmp != 0 {
				if ord.Ascending {
					return cmp < 0
				}
				return cmp > 0
			}
		}
		return users[i].ID > users[j].ID
	})
}
