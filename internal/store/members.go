package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gatherhall/member-import/internal/importer"
)

// MemberDirectory is the Postgres implementation of the importer's member
// directory abstraction.
type MemberDirectory struct {
	pool *pgxpool.Pool
}

// NewMemberDirectory returns a member directory over the given pool.
func NewMemberDirectory(pool *pgxpool.Pool) *MemberDirectory {
	return &MemberDirectory{pool: pool}
}

const memberColumns = `
	id, first_name, last_name, email, phone, address, birthday,
	marital_status, member_status, group_id, brought_by, notes`

// FindByEmail returns the member with the given email, or nil.
func (d *MemberDirectory) FindByEmail(ctx context.Context, email string) (*importer.Member, error) {
	return d.findOne(ctx, `SELECT`+memberColumns+` FROM members WHERE lower(email) = lower($1)`, email)
}

// FindByPhone returns the member with the given phone number, or nil.
func (d *MemberDirectory) FindByPhone(ctx context.Context, phone string) (*importer.Member, error) {
	return d.findOne(ctx, `SELECT`+memberColumns+` FROM members WHERE phone = $1`, phone)
}

// FindByNameAndBirthday returns the member matching first name, last name
// and birthday exactly, or nil.
func (d *MemberDirectory) FindByNameAndBirthday(ctx context.Context, firstName, lastName, birthday string) (*importer.Member, error) {
	return d.findOne(ctx, `
		SELECT`+memberColumns+`
		FROM members
		WHERE lower(first_name) = lower($1)
		  AND lower(last_name) = lower($2)
		  AND birthday = $3::date`,
		firstName, lastName, birthday)
}

// Create inserts a new member, assigning its id.
func (d *MemberDirectory) Create(ctx context.Context, m *importer.Member) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	_, err := d.pool.Exec(ctx, `
		INSERT INTO members
			(id, first_name, last_name, email, phone, address, birthday,
			 marital_status, member_status, group_id, brought_by, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		m.ID, m.FirstName, m.LastName,
		nullText(m.Email), nullText(m.Phone), nullText(m.Address),
		nullDate(m.Birthday), string(m.MaritalStatus), string(m.MemberStatus),
		nullText(m.GroupID), nullText(m.BroughtBy), nullText(m.Notes),
	)
	if err != nil {
		return fmt.Errorf("insert member: %w", err)
	}
	return nil
}

// Update overwrites an existing member's fields.
func (d *MemberDirectory) Update(ctx context.Context, m *importer.Member) error {
	tag, err := d.pool.Exec(ctx, `
		UPDATE members
		SET first_name = $2, last_name = $3, email = $4, phone = $5,
		    address = $6, birthday = $7, marital_status = $8,
		    member_status = $9, group_id = $10, brought_by = $11, notes = $12
		WHERE id = $1`,
		m.ID, m.FirstName, m.LastName,
		nullText(m.Email), nullText(m.Phone), nullText(m.Address),
		nullDate(m.Birthday), string(m.MaritalStatus), string(m.MemberStatus),
		nullText(m.GroupID), nullText(m.BroughtBy), nullText(m.Notes),
	)
	if err != nil {
		return fmt.Errorf("update member: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("member %s not found", m.ID)
	}
	return nil
}

func (d *MemberDirectory) findOne(ctx context.Context, query string, args ...any) (*importer.Member, error) {
	var m importer.Member
	var email, phone, address, groupID, broughtBy, notes pgtype.Text
	var birthday pgtype.Date
	var marital, status string

	err := d.pool.QueryRow(ctx, query, args...).Scan(
		&m.ID, &m.FirstName, &m.LastName, &email, &phone, &address,
		&birthday, &marital, &status, &groupID, &broughtBy, &notes,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query member: %w", err)
	}

	m.Email = email.String
	m.Phone = phone.String
	m.Address = address.String
	m.GroupID = groupID.String
	m.BroughtBy = broughtBy.String
	m.Notes = notes.String
	m.MaritalStatus = importer.MaritalStatus(marital)
	m.MemberStatus = importer.MemberStatus(status)
	if birthday.Valid {
		m.Birthday = birthday.Time.Format("2006-01-02")
	}
	return &m, nil
}

// nullText maps "" to SQL NULL; absence is the only empty state stored.
func nullText(s string) pgtype.Text {
	if s == "" {
		return pgtype.Text{}
	}
	return pgtype.Text{String: s, Valid: true}
}

func nullDate(s string) pgtype.Date {
	if s == "" {
		return pgtype.Date{}
	}
	d := pgtype.Date{}
	if err := d.Scan(s); err != nil {
		return pgtype.Date{}
	}
	return d
}
