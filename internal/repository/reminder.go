package repository

import (
	"context"

	"remindly-backend/internal/apperrors"
	"remindly-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const reminderColumns = `r.id, r.user_id, r.profile_id, r.title, r.description, r.date_to_remember,
	r.completed, r.frequency::text, r.should_expire, r.created_at, r.updated_at`

// ReminderRepository handles database operations for reminders
type ReminderRepository struct {
	db DBTX
}

// NewReminderRepository creates a new reminder repository
func NewReminderRepository(db *pgxpool.Pool) *ReminderRepository {
	return &ReminderRepository{db: db}
}

func reminderDest(r *models.Reminder, frequency *string) []any {
	return []any{
		&r.ID, &r.UserID, &r.ProfileID, &r.Title, &r.Description, &r.DateToRemember.Time,
		&r.Completed, frequency, &r.ShouldExpire, &r.CreatedAt, &r.UpdatedAt,
	}
}

func scanReminder(row pgx.Row) (*models.Reminder, error) {
	var r models.Reminder
	var frequency string
	if err := row.Scan(reminderDest(&r, &frequency)...); err != nil {
		return nil, err
	}
	r.Frequency = models.Frequency(frequency)
	return &r, nil
}

func collectReminders(rows pgx.Rows) ([]*models.Reminder, error) {
	defer rows.Close()

	reminders := []*models.Reminder{}
	for rows.Next() {
		reminder, err := scanReminder(rows)
		if err != nil {
			return nil, translate(err, "reminder", "scan")
		}
		reminders = append(reminders, reminder)
	}
	if err := rows.Err(); err != nil {
		return nil, translate(err, "reminders", "iterate")
	}
	return reminders, nil
}

// Create creates a new reminder
func (r *ReminderRepository) Create(ctx context.Context, reminder *models.Reminder) error {
	query := `
		INSERT INTO reminders (id, user_id, profile_id, title, description, date_to_remember,
			completed, frequency, should_expire, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8::frequency, $9, $10, $11)
	`
	_, err := conn(ctx, r.db).Exec(ctx, query,
		reminder.ID, reminder.UserID, reminder.ProfileID, reminder.Title, reminder.Description,
		reminder.DateToRemember.Time, reminder.Completed, string(reminder.Frequency),
		reminder.ShouldExpire, reminder.CreatedAt, reminder.UpdatedAt,
	)
	if err != nil {
		return translate(err, "reminder", "create")
	}
	return nil
}

// GetByID retrieves a reminder by ID
func (r *ReminderRepository) GetByID(ctx context.Context, id string) (*models.Reminder, error) {
	query := `SELECT ` + reminderColumns + ` FROM reminders r WHERE r.id = $1`
	reminder, err := scanReminder(conn(ctx, r.db).QueryRow(ctx, query, id))
	if err != nil {
		return nil, translate(err, "reminder", "get")
	}
	return reminder, nil
}

// ListByUserID retrieves all reminders of a user together with the name and
// image of the profile each one is attached to
func (r *ReminderRepository) ListByUserID(ctx context.Context, userID string) ([]*models.ReminderWithProfile, error) {
	query := `
		SELECT ` + reminderColumns + `, p.name, p.profile_img_url
		FROM reminders r
		LEFT JOIN profile p ON p.id = r.profile_id
		WHERE r.user_id = $1
		ORDER BY r.date_to_remember ASC, r.created_at ASC
	`
	rows, err := conn(ctx, r.db).Query(ctx, query, userID)
	if err != nil {
		return nil, translate(err, "reminders", "list")
	}
	defer rows.Close()

	reminders := []*models.ReminderWithProfile{}
	for rows.Next() {
		var item models.ReminderWithProfile
		var frequency string
		dest := append(reminderDest(&item.Reminder, &frequency), &item.ProfileName, &item.ProfileImgURL)
		if err := rows.Scan(dest...); err != nil {
			return nil, translate(err, "reminder", "scan")
		}
		item.Frequency = models.Frequency(frequency)
		reminders = append(reminders, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, translate(err, "reminders", "iterate")
	}
	return reminders, nil
}

// ListPersonal retrieves the reminders of a user that belong to no profile
func (r *ReminderRepository) ListPersonal(ctx context.Context, userID string) ([]*models.Reminder, error) {
	query := `
		SELECT ` + reminderColumns + `
		FROM reminders r
		WHERE r.user_id = $1 AND r.profile_id IS NULL
		ORDER BY r.date_to_remember ASC, r.created_at ASC
	`
	rows, err := conn(ctx, r.db).Query(ctx, query, userID)
	if err != nil {
		return nil, translate(err, "reminders", "list")
	}
	return collectReminders(rows)
}

// ListByProfile retrieves the reminders a user attached to one profile
func (r *ReminderRepository) ListByProfile(ctx context.Context, userID, profileID string) ([]*models.Reminder, error) {
	query := `
		SELECT ` + reminderColumns + `
		FROM reminders r
		WHERE r.user_id = $1 AND r.profile_id = $2
		ORDER BY r.date_to_remember ASC, r.created_at ASC
	`
	rows, err := conn(ctx, r.db).Query(ctx, query, userID, profileID)
	if err != nil {
		return nil, translate(err, "reminders", "list")
	}
	return collectReminders(rows)
}

// Update overwrites the mutable fields of a reminder
func (r *ReminderRepository) Update(ctx context.Context, reminder *models.Reminder) error {
	query := `
		UPDATE reminders
		SET profile_id = $2, title = $3, description = $4, date_to_remember = $5,
			completed = $6, frequency = $7::frequency, should_expire = $8, updated_at = $9
		WHERE id = $1
	`
	result, err := conn(ctx, r.db).Exec(ctx, query,
		reminder.ID, reminder.ProfileID, reminder.Title, reminder.Description,
		reminder.DateToRemember.Time, reminder.Completed, string(reminder.Frequency),
		reminder.ShouldExpire, reminder.UpdatedAt,
	)
	if err != nil {
		return translate(err, "reminder", "update")
	}
	if result.RowsAffected() == 0 {
		return apperrors.NotFound("reminder")
	}
	return nil
}

// Delete deletes a reminder by ID
func (r *ReminderRepository) Delete(ctx context.Context, id string) error {
	result, err := conn(ctx, r.db).Exec(ctx, `DELETE FROM reminders WHERE id = $1`, id)
	if err != nil {
		return translate(err, "reminder", "delete")
	}
	if result.RowsAffected() == 0 {
		return apperrors.NotFound("reminder")
	}
	return nil
}

// DeleteByProfileID deletes every reminder attached to a profile and returns
// how many rows went away
func (r *ReminderRepository) DeleteByProfileID(ctx context.Context, profileID string) (int64, error) {
	result, err := conn(ctx, r.db).Exec(ctx, `DELETE FROM reminders WHERE profile_id = $1`, profileID)
	if err != nil {
		return 0, translate(err, "reminders", "delete")
	}
	return result.RowsAffected(), nil
}
