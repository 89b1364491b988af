package sqlxrepos

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/user"
)

type userRepository struct {
	db *sqlx.DB
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db *sqlx.DB) *userRepository {
	return &userRepository{db: db}
}

type dbUser struct {
	ID                int         `db:"id"`
	Name              string      `db:"name"`
	Email             string      `db:"email"`
	Role              string      `db:"role"`
	GoogleID          null.String `db:"google_id"`
	Picture           null.String `db:"picture"`
	IsProfileComplete bool        `db:"is_profile_complete"`
	PasswordHash      []byte      `db:"password_hash"`
	CreatedAt         time.Time   `db:"created_at"`
	UpdatedAt         time.Time   `db:"updated_at"`
}

func (u dbUser) toUser() user.User {
	return user.User{
		ID:                u.ID,
		Name:              u.Name,
		Email:             u.Email,
		Role:              u.Role,
		GoogleID:          u.GoogleID.String,
		Picture:           u.Picture.String,
		IsProfileComplete: u.IsProfileComplete,
		PasswordHash:      u.PasswordHash,
		CreatedAt:         core.NewDate(u.CreatedAt),
		UpdatedAt:         u.UpdatedAt.UTC(),
	}
}

// trapNoRowsErr maps psql "no rows" err to user.ErrNotFound
func trapUserNoRowsErr(err error, msg string) error {
	if errors.Cause(err) == sql.ErrNoRows {
		return user.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo userRepository) CheckEmailUniqueness(ctx context.Context, email string, excludedUsers ...user.User) error {
	q := `SELECT EXISTS(SELECT 1 FROM "user" WHERE email = ? AND id NOT IN (?))`
	ids := make([]int, 0, len(excludedUsers))
	for _, u := range excludedUsers {
		ids = append(ids, u.ID)
	}
	if len(ids) == 0 {
		ids = append(ids, 0)
	}
	q, args, err := sqlx.In(q, email, ids)
	if err != nil {
		return errors.Wrap(err, "building uniqueness query")
	}

	var exists bool
	if err := repo.db.GetContext(ctx, &exists, repo.db.Rebind(q), args...); err != nil {
		return errors.Wrap(err, "checking email uniqueness")
	}
	if exists {
		return user.ErrEmailExists
	}
	return nil
}

// pwdHash never passes a nil hash to the driver: pq encodes nil []byte as
// NULL and password_hash is NOT NULL. Accounts created via Google sign-in
// have no password yet and store an empty hash.
func pwdHash(hash []byte) []byte {
	if hash == nil {
		return []byte{}
	}
	return hash
}

func (repo userRepository) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	q := `
		INSERT INTO "user" (name, email, role, google_id, picture, is_profile_complete, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`
	err := repo.db.QueryRowContext(
		ctx, q,
		usr.Name, usr.Email, usr.Role,
		null.NewString(usr.GoogleID, usr.GoogleID != ""),
		null.NewString(usr.Picture, usr.Picture != ""),
		usr.IsProfileComplete, pwdHash(usr.PasswordHash),
		usr.CreatedAt.UTC(), usr.UpdatedAt.UTC(),
	).Scan(&usr.ID)
	if err != nil {
		// the unique email constraint settles a register race: the loser gets
		// the same error as a sequential duplicate
		if pqErr, ok := errors.Cause(err).(*pq.Error); ok && string(pqErr.Code) == pqUniqueViolation {
			return user.User{}, user.ErrEmailExists
		}
		return user.User{}, errors.Wrap(err, "creating user")
	}
	return usr, nil
}

func (repo userRepository) QueryAllUsers(ctx context.Context, orderings ...core.DBOrdering) ([]user.User, error) {
	q := `SELECT * FROM "user" ORDER BY ` + userOrderBy(orderings)

	var rows []dbUser
	if err := repo.db.SelectContext(ctx, &rows, q); err != nil {
		return nil, errors.Wrap(err, "querying users")
	}
	users := make([]user.User, 0, len(rows))
	for _, row := range rows {
		users = append(users, row.toUser())
	}
	return users, nil
}

func (repo userRepository) QueryUserNames(ctx context.Context) ([]user.Name, error) {
	var names []user.Name
	q := `SELECT id, name FROM "user" ORDER BY name ASC`
	rows, err := repo.db.QueryContext(ctx, q)
	if err != nil {
		return nil, errors.Wrap(err, "querying user names")
	}
	defer func() { _ = rows.Close() }()
	for rows.Next() {
		var n user.Name
		if err := rows.Scan(&n.ID, &n.Name); err != nil {
			return nil, errors.Wrap(err, "scanning user name")
		}
		names = append(names, n)
	}
	return names, errors.Wrap(rows.Err(), "querying user names")
}

func (repo userRepository) GetUserByID(ctx context.Context, id int) (user.User, error) {
	var row dbUser
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM "user" WHERE id = $1`, id); err != nil {
		return user.User{}, trapUserNoRowsErr(err, "finding user by ID")
	}
	return row.toUser(), nil
}

func (repo userRepository) GetUserByEmail(ctx context.Context, email string) (user.User, error) {
	var row dbUser
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM "user" WHERE email = $1`, email); err != nil {
		return user.User{}, trapUserNoRowsErr(err, "finding user by email")
	}
	return row.toUser(), nil
}

func (repo userRepository) UpdateUser(ctx context.Context, usr user.User) (user.User, error) {
	q := `
		UPDATE "user"
		SET name = $1, email = $2, role = $3, google_id = $4, picture = $5,
		    is_profile_complete = $6, password_hash = $7, updated_at = $8
		WHERE id = $9`
	res, err := repo.db.ExecContext(
		ctx, q,
		usr.Name, usr.Email, usr.Role,
		null.NewString(usr.GoogleID, usr.GoogleID != ""),
		null.NewString(usr.Picture, usr.Picture != ""),
		usr.IsProfileComplete, pwdHash(usr.PasswordHash), usr.UpdatedAt.UTC(),
		usr.ID,
	)
	if err != nil {
		if pqErr, ok := errors.Cause(err).(*pq.Error); ok && string(pqErr.Code) == pqUniqueViolation {
			return user.User{}, user.ErrEmailExists
		}
		return user.User{}, errors.Wrap(err, "updating user")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return user.User{}, user.ErrNotFound
	}
	return usr, nil
}

func (repo userRepository) DeleteUserByID(ctx context.Context, id int) error {
	res, err := repo.db.ExecContext(ctx, `DELETE FROM "user" WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "deleting user")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return user.ErrNotFound
	}
	return nil
}

func (repo userRepository) CountAuthoredContent(ctx context.Context, id int) (user.ContentCounts, error) {
	q := `
		SELECT (SELECT COUNT(*) FROM topic WHERE created_by = $1),
		       (SELECT COUNT(*) FROM session WHERE presenter_id = $1),
		       (SELECT COUNT(*) FROM interaction WHERE author_id = $1)`
	var counts user.ContentCounts
	err := repo.db.QueryRowContext(ctx, q, id).Scan(&counts.Topics, &counts.Sessions, &counts.Interactions)
	return counts, errors.Wrap(err, "counting authored content")
}

var userOrderingColumns = map[string]string{
	"name":       "name",
	"email":      "email",
	"role":       "role",
	"created_at": "created_at",
}

// userOrderBy whitelists orderable columns; unknown fields are dropped.
func userOrderBy(orderings []core.DBOrdering) string {
	clauses := make([]string, 0, len(orderings))
	for _, ord := range orderings {
		if col, ok := userOrderingColumns[ord.Field]; ok {
			clauses = append(clauses, core.DBOrdering{Field: col, Ascending: ord.Ascending}.String())
		}
	}
	if len(clauses) == 0 {
		return "created_at DESC, id DESC"
	}
	return strings.Join(clauses, ", ")
}
