//go:build integration

package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"remindly-backend/internal/apperrors"
	"remindly-backend/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/suite"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
)

type PostgresSuite struct {
	suite.Suite

	container  *tcpostgres.PostgresContainer
	pool       *pgxpool.Pool
	users      *UserRepository
	profiles   *ProfileRepository
	reminders  *ReminderRepository
	favourites *FavouriteRepository
	tx         *TxManager
}

func TestPostgresSuite(t *testing.T) {
	suite.Run(t, new(PostgresSuite))
}

func (s *PostgresSuite) SetupSuite() {
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("remindly"),
		tcpostgres.WithUsername("remindly"),
		tcpostgres.WithPassword("remindly"),
		tcpostgres.BasicWaitStrategies(),
	)
	s.Require().NoError(err)
	s.container = container

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	s.Require().NoError(err)

	pool, err := pgxpool.New(ctx, dsn)
	s.Require().NoError(err)
	s.pool = pool

	s.Require().NoError(Migrate(ctx, pool))

	s.users = NewUserRepository(pool)
	s.profiles = NewProfileRepository(pool)
	s.reminders = NewReminderRepository(pool)
	s.favourites = NewFavouriteRepository(pool)
	s.tx = NewTxManager(pool)
}

func (s *PostgresSuite) TearDownSuite() {
	if s.pool != nil {
		s.pool.Close()
	}
	if s.container != nil {
		_ = s.container.Terminate(context.Background())
	}
}

func (s *PostgresSuite) SetupTest() {
	_, err := s.pool.Exec(context.Background(), `TRUNCATE favourites, reminders, profile, users`)
	s.Require().NoError(err)
}

func (s *PostgresSuite) seed(ctx context.Context) (*models.User, *models.Profile) {
	now := time.Now().UTC().Truncate(time.Microsecond)
	user := &models.User{ID: "user_" + uuid.NewString()[:8], Email: "a@example.com", Name: "A", CreatedAt: now, UpdatedAt: now}
	created, err := s.users.Create(ctx, user)
	s.Require().NoError(err)
	s.Require().True(created)

	profile := &models.Profile{ID: uuid.NewString(), UserID: user.ID, Name: "Mum", CreatedAt: now, UpdatedAt: now}
	s.Require().NoError(s.profiles.Create(ctx, profile))
	return user, profile
}

func (s *PostgresSuite) newReminder(userID string, profileID *string, f models.Frequency) *models.Reminder {
	now := time.Now().UTC()
	r := &models.Reminder{
		ID:             uuid.NewString(),
		UserID:         userID,
		ProfileID:      profileID,
		Title:          "Birthday",
		DateToRemember: models.NewDate(2025, time.March, 14),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	r.SetFrequency(f)
	return r
}

func (s *PostgresSuite) TestUserCreateIsIdempotent() {
	ctx := context.Background()
	user, _ := s.seed(ctx)

	created, err := s.users.Create(ctx, &models.User{ID: user.ID, Email: "other@example.com", CreatedAt: time.Now(), UpdatedAt: time.Now()})
	s.Require().NoError(err)
	s.False(created)

	stored, err := s.users.GetByID(ctx, user.ID)
	s.Require().NoError(err)
	s.Equal("a@example.com", stored.Email)

	err = s.users.Update(ctx, &models.User{ID: "missing", UpdatedAt: time.Now()})
	s.ErrorIs(err, apperrors.ErrNotFound)
}

func (s *PostgresSuite) TestReminderRoundTrip() {
	ctx := context.Background()
	user, profile := s.seed(ctx)

	reminder := s.newReminder(user.ID, &profile.ID, models.FrequencyNever)
	s.Require().NoError(s.reminders.Create(ctx, reminder))

	stored, err := s.reminders.GetByID(ctx, reminder.ID)
	s.Require().NoError(err)
	s.Equal(models.FrequencyNever, stored.Frequency)
	s.True(stored.ShouldExpire)
	s.Equal("2025-03-14", stored.DateToRemember.String())

	list, err := s.reminders.ListByUserID(ctx, user.ID)
	s.Require().NoError(err)
	s.Require().Len(list, 1)
	s.Require().NotNil(list[0].ProfileName)
	s.Equal("Mum", *list[0].ProfileName)

	personal := s.newReminder(user.ID, nil, models.FrequencyYear)
	s.Require().NoError(s.reminders.Create(ctx, personal))
	onlyPersonal, err := s.reminders.ListPersonal(ctx, user.ID)
	s.Require().NoError(err)
	s.Require().Len(onlyPersonal, 1)
	s.Equal(personal.ID, onlyPersonal[0].ID)
}

func (s *PostgresSuite) TestForeignKeysSurfaceAsNotFound() {
	ctx := context.Background()
	user, _ := s.seed(ctx)

	missing := uuid.NewString()
	err := s.reminders.Create(ctx, s.newReminder(user.ID, &missing, models.FrequencyYear))
	s.ErrorIs(err, apperrors.ErrNotFound)

	now := time.Now()
	err = s.favourites.Create(ctx, &models.Favourite{ID: uuid.NewString(), UserID: user.ID, ProfileID: missing, Title: "x", CreatedAt: now, UpdatedAt: now})
	s.ErrorIs(err, apperrors.ErrNotFound)
}

func (s *PostgresSuite) TestProfileWithChildrenCannotBeDeletedDirectly() {
	ctx := context.Background()
	user, profile := s.seed(ctx)
	s.Require().NoError(s.reminders.Create(ctx, s.newReminder(user.ID, &profile.ID, models.FrequencyMonth)))

	err := s.profiles.Delete(ctx, profile.ID)
	s.Require().Error(err)
	s.False(errors.Is(err, apperrors.ErrNotFound))
}

func (s *PostgresSuite) TestCascadeInTransaction() {
	ctx := context.Background()
	user, profile := s.seed(ctx)
	for i := 0; i < 3; i++ {
		s.Require().NoError(s.reminders.Create(ctx, s.newReminder(user.ID, &profile.ID, models.FrequencyYear)))
	}
	now := time.Now()
	s.Require().NoError(s.favourites.Create(ctx, &models.Favourite{ID: uuid.NewString(), UserID: user.ID, ProfileID: profile.ID, Title: "Tea", CreatedAt: now, UpdatedAt: now}))

	var reminders, favourites int64
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		if reminders, err = s.reminders.DeleteByProfileID(ctx, profile.ID); err != nil {
			return err
		}
		if favourites, err = s.favourites.DeleteByProfileID(ctx, profile.ID); err != nil {
			return err
		}
		return s.profiles.Delete(ctx, profile.ID)
	})
	s.Require().NoError(err)
	s.Equal(int64(3), reminders)
	s.Equal(int64(1), favourites)

	_, err = s.profiles.GetByID(ctx, profile.ID)
	s.ErrorIs(err, apperrors.ErrNotFound)
}

func (s *PostgresSuite) TestTransactionRollsBack() {
	ctx := context.Background()
	user, profile := s.seed(ctx)
	s.Require().NoError(s.reminders.Create(ctx, s.newReminder(user.ID, &profile.ID, models.FrequencyYear)))

	boom := errors.New("abort")
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := s.reminders.DeleteByProfileID(ctx, profile.ID); err != nil {
			return err
		}
		return boom
	})
	s.ErrorIs(err, boom)

	left, err := s.reminders.ListByProfile(ctx, user.ID, profile.ID)
	s.Require().NoError(err)
	s.Len(left, 1)
}

func (s *PostgresSuite) TestSetImageURLIsConditional() {
	ctx := context.Background()
	_, profile := s.seed(ctx)
	first := "https://cdn.example.com/profiles/a.png"
	second := "https://cdn.example.com/profiles/b.png"

	saved, err := s.profiles.SetImageURL(ctx, profile.ID, nil, &first, time.Now())
	s.Require().NoError(err)
	s.True(saved)

	saved, err = s.profiles.SetImageURL(ctx, profile.ID, nil, &second, time.Now())
	s.Require().NoError(err)
	s.False(saved)

	profile.Name = "Mother"
	profile.UpdatedAt = time.Now()
	s.Require().NoError(s.profiles.Update(ctx, profile))

	stored, err := s.profiles.GetByID(ctx, profile.ID)
	s.Require().NoError(err)
	s.Equal("Mother", stored.Name)
	s.Require().NotNil(stored.ProfileImgURL)
	s.Equal(first, *stored.ProfileImgURL)

	saved, err = s.profiles.SetImageURL(ctx, profile.ID, &first, nil, time.Now())
	s.Require().NoError(err)
	s.True(saved)

	_, err = s.profiles.SetImageURL(ctx, uuid.NewString(), nil, &first, time.Now())
	s.ErrorIs(err, apperrors.ErrNotFound)
}
