// Command seed provisions the schema and loads a small demo dataset:
// two admins, three customers, three tours with upcoming dates and a
// couple of bookings.  It wipes existing rows first, so it must never
// be pointed at a production database.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"

	"github.com/lucavalca/tour-booking/internal/config"
	"github.com/lucavalca/tour-booking/internal/database"
	"github.com/lucavalca/tour-booking/internal/model"
	"github.com/lucavalca/tour-booking/internal/repository"
	"github.com/lucavalca/tour-booking/internal/utils"
)

var ddl = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		first_name    VARCHAR(100)  NOT NULL DEFAULT '',
		last_name     VARCHAR(100)  NOT NULL DEFAULT '',
		display_name  VARCHAR(200)  NOT NULL DEFAULT '',
		email         VARCHAR(255)  NOT NULL,
		password_hash VARCHAR(255)  NOT NULL DEFAULT '',
		role          VARCHAR(16)   NOT NULL DEFAULT 'CUSTOMER',
		firebase_uid  VARCHAR(128)  NULL,
		photo_url     VARCHAR(512)  NULL,
		created_at    TIMESTAMP     NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at    TIMESTAMP     NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		UNIQUE KEY uq_users_email (email)
	) ENGINE=InnoDB`,
	`CREATE TABLE IF NOT EXISTS refresh_tokens (
		id         BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		user_id    BIGINT UNSIGNED NOT NULL,
		token_hash CHAR(64)        NOT NULL,
		expires_at TIMESTAMP       NOT NULL,
		revoked_at TIMESTAMP       NULL,
		created_at TIMESTAMP       NOT NULL DEFAULT CURRENT_TIMESTAMP,
		KEY idx_refresh_tokens_user (user_id),
		KEY idx_refresh_tokens_hash (token_hash),
		CONSTRAINT fk_refresh_tokens_user FOREIGN KEY (user_id) REFERENCES users (id) ON DELETE CASCADE
	) ENGINE=InnoDB`,
	`CREATE TABLE IF NOT EXISTS tours (
		id                BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		title             VARCHAR(255)    NOT NULL,
		slug              VARCHAR(255)    NOT NULL,
		description       TEXT            NOT NULL,
		price_adult_cents INT UNSIGNED    NOT NULL,
		price_child_cents INT UNSIGNED    NOT NULL DEFAULT 0,
		language          VARCHAR(16)     NOT NULL DEFAULT 'it',
		itinerary         TEXT            NOT NULL,
		duration_value    INT UNSIGNED    NOT NULL DEFAULT 0,
		duration_unit     VARCHAR(16)     NOT NULL DEFAULT 'hours',
		cover_image       VARCHAR(512)    NOT NULL DEFAULT '',
		images            TEXT            NOT NULL,
		includes          TEXT            NOT NULL,
		excludes          TEXT            NOT NULL,
		terms             TEXT            NOT NULL,
		max_seats         INT UNSIGNED    NOT NULL DEFAULT 0,
		difficulty        VARCHAR(16)     NOT NULL DEFAULT '',
		gpx_url           VARCHAR(512)    NULL,
		lat               DOUBLE          NULL,
		lng               DOUBLE          NULL,
		created_at        TIMESTAMP       NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at        TIMESTAMP       NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		UNIQUE KEY uq_tours_slug (slug)
	) ENGINE=InnoDB`,
	`CREATE TABLE IF NOT EXISTS tour_dates (
		id                   BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		tour_id              BIGINT UNSIGNED NOT NULL,
		starts_at            TIMESTAMP       NOT NULL,
		ends_at              TIMESTAMP       NULL,
		timezone             VARCHAR(64)     NOT NULL DEFAULT 'Europe/Rome',
		capacity_min         INT UNSIGNED    NOT NULL DEFAULT 1,
		capacity_max         INT UNSIGNED    NOT NULL,
		price_override_cents INT UNSIGNED    NULL,
		status               VARCHAR(16)     NOT NULL DEFAULT 'ACTIVE',
		created_at           TIMESTAMP       NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at           TIMESTAMP       NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		KEY idx_tour_dates_tour (tour_id),
		KEY idx_tour_dates_starts (starts_at),
		CONSTRAINT fk_tour_dates_tour FOREIGN KEY (tour_id) REFERENCES tours (id) ON DELETE CASCADE
	) ENGINE=InnoDB`,
	`CREATE TABLE IF NOT EXISTS bookings (
		id             BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		user_id        BIGINT UNSIGNED NOT NULL,
		tour_date_id   BIGINT UNSIGNED NOT NULL,
		adults         INT UNSIGNED    NOT NULL,
		children       INT UNSIGNED    NOT NULL DEFAULT 0,
		total_cents    BIGINT UNSIGNED NOT NULL,
		payment_method VARCHAR(16)     NOT NULL,
		payment_status VARCHAR(16)     NOT NULL DEFAULT 'PENDING',
		notes          TEXT            NULL,
		qr_code        VARCHAR(64)     NOT NULL,
		checked_in     TINYINT(1)      NOT NULL DEFAULT 0,
		checked_in_at  TIMESTAMP       NULL,
		created_at     TIMESTAMP       NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at     TIMESTAMP       NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		UNIQUE KEY uq_bookings_qr (qr_code),
		KEY idx_bookings_user (user_id),
		KEY idx_bookings_date (tour_date_id),
		CONSTRAINT fk_bookings_user FOREIGN KEY (user_id) REFERENCES users (id),
		CONSTRAINT fk_bookings_date FOREIGN KEY (tour_date_id) REFERENCES tour_dates (id)
	) ENGINE=InnoDB`,
	`CREATE TABLE IF NOT EXISTS notifications (
		id         BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		type       VARCHAR(32)     NOT NULL,
		payload    TEXT            NOT NULL,
		seen       TINYINT(1)      NOT NULL DEFAULT 0,
		created_at TIMESTAMP       NOT NULL DEFAULT CURRENT_TIMESTAMP
	) ENGINE=InnoDB`,
}

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer func() { _ = db.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	for _, stmt := range ddl {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			log.Fatalf("schema: %v", err)
		}
	}

	// wipe in FK order
	for _, table := range []string{"bookings", "notifications", "refresh_tokens", "tour_dates", "tours", "users"} {
		if _, err := db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			log.Fatalf("wipe %s: %v", table, err)
		}
	}

	users := repository.NewUserRepo(db)
	tours := repository.NewTourRepo(db)
	dates := repository.NewTourDateRepo(db)
	bookings := repository.NewBookingRepo(db)
	notifications := repository.NewNotificationRepo(db)

	type account struct {
		first, last, email, password, role string
	}
	accounts := []account{
		{"Luca", "Valcarenghi", "luca@tours.example", "admin-password-1", model.RoleAdmin},
		{"Giulia", "Moretti", "giulia@tours.example", "admin-password-2", model.RoleAdmin},
		{"Marco", "Rossi", "marco@example.com", "customer-pass-1", model.RoleCustomer},
		{"Anna", "Bianchi", "anna@example.com", "customer-pass-2", model.RoleCustomer},
		{"Paolo", "Ferrari", "paolo@example.com", "customer-pass-3", model.RoleCustomer},
	}
	ids := make(map[string]uint64, len(accounts))
	for _, a := range accounts {
		id, err := users.Create(ctx, a.first, a.last, a.email, a.password, a.role, cfg.BcryptCost)
		if err != nil {
			log.Fatalf("seed user %s: %v", a.email, err)
		}
		ids[a.email] = id
	}

	seedTours := []*model.Tour{
		{
			Title:           "Escursione al Monte Bianco",
			Description:     "Giornata intera sul versante italiano del Monte Bianco con guida alpina.",
			PriceAdultCents: 8900,
			PriceChildCents: 4500,
			Language:        "it",
			Itinerary:       "Courmayeur - Val Veny - Rifugio Elisabetta e ritorno.",
			DurationValue:   8,
			DurationUnit:    "hours",
			CoverImage:      "https://cdn.tours.example/monte-bianco/cover.jpg",
			Images:          []string{"https://cdn.tours.example/monte-bianco/1.jpg", "https://cdn.tours.example/monte-bianco/2.jpg"},
			Includes:        []string{"guida alpina", "pranzo al sacco", "assicurazione"},
			Excludes:        []string{"trasporto", "attrezzatura tecnica"},
			Terms:           "Cancellazione gratuita fino a 48 ore prima della partenza.",
			MaxSeats:        20,
			Difficulty:      "medium",
		},
		{
			Title:           "Tramonto sulle Cinque Terre in barca",
			Description:     "Uscita serale in barca da Monterosso con aperitivo a bordo.",
			PriceAdultCents: 6500,
			PriceChildCents: 3000,
			Language:        "it",
			Itinerary:       "Monterosso - Vernazza - Riomaggiore al tramonto.",
			DurationValue:   3,
			DurationUnit:    "hours",
			CoverImage:      "https://cdn.tours.example/cinque-terre/cover.jpg",
			Images:          []string{"https://cdn.tours.example/cinque-terre/1.jpg"},
			Includes:        []string{"skipper", "aperitivo"},
			Excludes:        []string{"cena"},
			Terms:           "Partenza soggetta alle condizioni del mare.",
			MaxSeats:        12,
			Difficulty:      "easy",
		},
		{
			Title:           "Rome Street Food Walk",
			Description:     "Evening food tour through Trastevere and the Jewish Ghetto.",
			PriceAdultCents: 5500,
			PriceChildCents: 2500,
			Language:        "en",
			Itinerary:       "Campo de' Fiori - Jewish Ghetto - Trastevere.",
			DurationValue:   4,
			DurationUnit:    "hours",
			CoverImage:      "https://cdn.tours.example/rome-food/cover.jpg",
			Images:          []string{"https://cdn.tours.example/rome-food/1.jpg"},
			Includes:        []string{"five tastings", "local guide"},
			Excludes:        []string{"extra drinks"},
			Terms:           "Not suitable for guests with severe food allergies.",
			MaxSeats:        15,
			Difficulty:      "easy",
		},
	}
	for _, t := range seedTours {
		t.Slug = utils.Slugify(t.Title)
		if err := tours.Create(ctx, t); err != nil {
			log.Fatalf("seed tour %q: %v", t.Title, err)
		}
	}

	montebianco := seedTours[0]
	nextSaturday := upcoming(time.Saturday)
	seedDates := []*model.TourDate{
		{TourID: montebianco.ID, StartsAt: nextSaturday.Add(7 * time.Hour), Timezone: "Europe/Rome", CapacityMin: 4, CapacityMax: 20, Status: model.TourDateActive},
		{TourID: montebianco.ID, StartsAt: nextSaturday.AddDate(0, 0, 7).Add(7 * time.Hour), Timezone: "Europe/Rome", CapacityMin: 4, CapacityMax: 20, Status: model.TourDateActive},
		{TourID: seedTours[1].ID, StartsAt: upcoming(time.Friday).Add(18 * time.Hour), Timezone: "Europe/Rome", CapacityMin: 2, CapacityMax: 12, Status: model.TourDateActive},
		{TourID: seedTours[2].ID, StartsAt: upcoming(time.Sunday).Add(17 * time.Hour), Timezone: "Europe/Rome", CapacityMin: 2, CapacityMax: 15, Status: model.TourDateActive},
	}
	for _, d := range seedDates {
		if err := dates.Create(ctx, d); err != nil {
			log.Fatalf("seed tour date: %v", err)
		}
	}

	// Two bookings on the first Monte Bianco date: a paid 3+1 and a
	// cancelled 2+0, leaving 16 of 20 seats available.
	type seedBooking struct {
		email            string
		adults, children uint32
		status           string
	}
	for _, sb := range []seedBooking{
		{"marco@example.com", 3, 1, model.PaymentPaid},
		{"anna@example.com", 2, 0, model.PaymentCancelled},
	} {
		if err := createBooking(ctx, db, bookings, notifications, ids[sb.email], seedDates[0].ID, sb.adults, sb.children, sb.status); err != nil {
			log.Fatalf("seed booking for %s: %v", sb.email, err)
		}
	}

	fmt.Printf("seeded %d users, %d tours, %d tour dates, 2 bookings\n", len(accounts), len(seedTours), len(seedDates))
	fmt.Printf("admin login: %s / %s\n", accounts[0].email, accounts[0].password)
}

// upcoming returns midnight UTC of the next occurrence of the given
// weekday, at least one day out.
func upcoming(day time.Weekday) time.Time {
	t := time.Now().UTC().Truncate(24 * time.Hour).AddDate(0, 0, 1)
	for t.Weekday() != day {
		t = t.AddDate(0, 0, 1)
	}
	return t
}

func createBooking(ctx context.Context, db *sql.DB, bookings *repository.BookingRepo, notifications *repository.NotificationRepo, userID, dateID uint64, adults, children uint32, status string) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	ld, err := bookings.LockDateTx(ctx, tx, dateID)
	if err != nil {
		return err
	}
	booked, err := bookings.BookedSeatsTx(ctx, tx, dateID, 0)
	if err != nil {
		return err
	}
	seats := model.SeatCount(adults, children)
	if seats > uint64(model.AvailableSeats(ld.CapacityMax, booked)) {
		return fmt.Errorf("tour date %d has no room for %d seats", dateID, seats)
	}
	qr, err := utils.NewQRToken()
	if err != nil {
		return err
	}
	b := &model.Booking{
		UserID:        userID,
		TourDateID:    dateID,
		Adults:        adults,
		Children:      children,
		TotalCents:    model.TotalCents(adults, children, ld.EffectiveAdultCents, ld.ChildCents),
		PaymentMethod: model.PayOnsite,
		PaymentStatus: status,
		QRCode:        qr,
	}
	if err := bookings.CreateTx(ctx, tx, b); err != nil {
		return err
	}
	payload := fmt.Sprintf(`{"booking_id":%d,"user_id":%d,"tour_title":%q,"seats":%d}`, b.ID, userID, ld.TourTitle, b.Seats())
	if err := notifications.CreateTx(ctx, tx, model.NotifyBookingCreated, payload); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}
