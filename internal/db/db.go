package db

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
)

var Conn *pgxpool.Pool

// Init connects to Postgres
func Init() {
	dsn := fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s",
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"),
		os.Getenv("DB_HOST"),
		os.Getenv("DB_PORT"),
		os.Getenv("DB_NAME"),
	)

	var err error
	Conn, err = pgxpool.New(context.Background(), dsn)
	if err != nil {
		log.Fatalf("Unable to connect to database: %v\n", err)
	}

	if err = Conn.Ping(context.Background()); err != nil {
		log.Fatalf("Unable to ping database: %v\n", err)
	}

	log.Println("Connected to Postgres successfully")

	ensureUsersTable()
	ensureJobsTable()
	ensureBidsTable()
	ensureConversationTables()
	ensureMessagesTable()
	ensureNotificationsTable()
	ensureReviewsTable()
}

func ensureUsersTable() {
	ctx := context.Background()
	_, err := Conn.Exec(ctx, `
        CREATE TABLE IF NOT EXISTS users (
            id UUID PRIMARY KEY,
            name TEXT NOT NULL,
            email TEXT NOT NULL UNIQUE,
            password TEXT NOT NULL,
            role TEXT NOT NULL CHECK (role IN ('customer','craftsman','admin')),
            created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
        );
    `)
	if err != nil {
		log.Printf("failed to create users table: %v", err)
	}
}

func ensureJobsTable() {
	ctx := context.Background()
	_, err := Conn.Exec(ctx, `
        CREATE TABLE IF NOT EXISTS jobs (
            id UUID PRIMARY KEY,
            customer_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
            category_id TEXT,
            title TEXT NOT NULL,
            description TEXT,
            budget_min BIGINT DEFAULT 0,
            budget_max BIGINT DEFAULT 0,
            currency TEXT NOT NULL DEFAULT 'SYP',
            status TEXT NOT NULL DEFAULT 'open'
                CHECK (status IN ('open','in_progress','completed','cancelled')),
            created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP,
            updated_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
        );
        CREATE INDEX IF NOT EXISTS idx_jobs_customer ON jobs(customer_id);
        CREATE INDEX IF NOT EXISTS idx_jobs_status ON jobs(status, created_at);
    `)
	if err != nil {
		log.Printf("failed to create jobs table: %v", err)
	}
}

func ensureBidsTable() {
	ctx := context.Background()
	_, err := Conn.Exec(ctx, `
        CREATE TABLE IF NOT EXISTS bids (
            id UUID PRIMARY KEY,
            job_id UUID NOT NULL REFERENCES jobs(id) ON DELETE CASCADE,
            craftsman_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
            price BIGINT NOT NULL,
            currency TEXT NOT NULL DEFAULT 'SYP',
            estimated_days INTEGER NOT NULL DEFAULT 1,
            message TEXT,
            status TEXT NOT NULL DEFAULT 'pending'
                CHECK (status IN ('pending','accepted','rejected','withdrawn')),
            created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP,
            updated_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
        );
        CREATE INDEX IF NOT EXISTS idx_bids_job ON bids(job_id);
    `)
	if err != nil {
		log.Printf("failed to create bids table: %v", err)
		return
	}
	// One live bid per craftsman per job; a withdrawn bid frees the slot.
	_, err = Conn.Exec(ctx, `
        CREATE UNIQUE INDEX IF NOT EXISTS uniq_bids_live
        ON bids(job_id, craftsman_id) WHERE status <> 'withdrawn';
    `)
	if err != nil {
		log.Printf("failed to create live-bid index: %v", err)
	}
	// At most one accepted bid per job.
	_, err = Conn.Exec(ctx, `
        CREATE UNIQUE INDEX IF NOT EXISTS uniq_bids_accepted
        ON bids(job_id) WHERE status = 'accepted';
    `)
	if err != nil {
		log.Printf("failed to create accepted-bid index: %v", err)
	}
}

func ensureConversationTables() {
	ctx := context.Background()
	_, err := Conn.Exec(ctx, `
        CREATE TABLE IF NOT EXISTS conversations (
            id UUID PRIMARY KEY,
            job_id UUID NULL REFERENCES jobs(id) ON DELETE SET NULL,
            created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP,
            updated_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
        );
        CREATE TABLE IF NOT EXISTS conversation_participants (
            conversation_id UUID NOT NULL REFERENCES conversations(id) ON DELETE CASCADE,
            user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
            last_read_at TIMESTAMP WITH TIME ZONE NULL,
            PRIMARY KEY (conversation_id, user_id)
        );
        CREATE INDEX IF NOT EXISTS idx_participants_user ON conversation_participants(user_id);
    `)
	if err != nil {
		log.Printf("failed to create conversation tables: %v", err)
	}
}

func ensureMessagesTable() {
	ctx := context.Background()
	_, err := Conn.Exec(ctx, `
        CREATE TABLE IF NOT EXISTS messages (
            id UUID PRIMARY KEY,
            conversation_id UUID NOT NULL REFERENCES conversations(id) ON DELETE CASCADE,
            sender_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
            content TEXT NOT NULL,
            is_read BOOLEAN NOT NULL DEFAULT FALSE,
            created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
        );
        CREATE INDEX IF NOT EXISTS idx_messages_conversation ON messages(conversation_id, created_at);
        CREATE INDEX IF NOT EXISTS idx_messages_unread ON messages(conversation_id) WHERE is_read = FALSE;
    `)
	if err != nil {
		log.Printf("failed to create messages table: %v", err)
	}
}

func ensureNotificationsTable() {
	ctx := context.Background()
	_, err := Conn.Exec(ctx, `
        CREATE TABLE IF NOT EXISTS notifications (
            id UUID PRIMARY KEY,
            user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
            type TEXT NOT NULL,
            title_ar TEXT NOT NULL,
            title_en TEXT NOT NULL,
            body_ar TEXT,
            body_en TEXT,
            link TEXT,
            related_id UUID NULL,
            is_read BOOLEAN NOT NULL DEFAULT FALSE,
            created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP,
            read_at TIMESTAMP WITH TIME ZONE NULL
        );
        CREATE INDEX IF NOT EXISTS idx_notifications_user_created ON notifications(user_id, created_at);
        CREATE INDEX IF NOT EXISTS idx_notifications_user_unread ON notifications(user_id) WHERE is_read = FALSE;
    `)
	if err != nil {
		log.Printf("failed to create notifications table: %v", err)
	}
}

func ensureReviewsTable() {
	ctx := context.Background()
	_, err := Conn.Exec(ctx, `
        CREATE TABLE IF NOT EXISTS reviews (
            id UUID PRIMARY KEY,
            job_id UUID NOT NULL UNIQUE REFERENCES jobs(id) ON DELETE CASCADE,
            reviewer_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
            craftsman_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
            rating INTEGER NOT NULL CHECK (rating BETWEEN 1 AND 5),
            comment TEXT,
            created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
        );
        CREATE INDEX IF NOT EXISTS idx_reviews_craftsman ON reviews(craftsman_id);
    `)
	if err != nil {
		log.Printf("failed to create reviews table: %v", err)
	}
}
