package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/0xsim0/My-Hammer-Syria-sub000/internal/domain"
)

// Postgres persists through a pgx pool. Each mutating method runs as one
// transaction so partial application of a logical operation cannot be
// observed.
type Postgres struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

var _ Store = (*Postgres)(nil)

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func internalErr(msg string, err error) error {
	return domain.NewError(domain.CodeInternal, msg, err)
}

func (p *Postgres) CreateUser(ctx context.Context, u domain.User) error {
	_, err := p.pool.Exec(ctx,
		`INSERT INTO users (id, name, email, password, role) VALUES ($1, $2, $3, $4, $5)`,
		u.ID, u.Name, u.Email, u.PasswordHash, u.Role,
	)
	if isUniqueViolation(err) {
		return domain.NewError(domain.CodeConflict, "email already registered", err)
	}
	if err != nil {
		return internalErr("failed to create user", err)
	}
	return nil
}

func (p *Postgres) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	return p.scanUser(p.pool.QueryRow(ctx,
		`SELECT id::text, name, email, password, role, created_at FROM users WHERE email = $1`, email))
}

func (p *Postgres) GetUserByID(ctx context.Context, id string) (domain.User, error) {
	return p.scanUser(p.pool.QueryRow(ctx,
		`SELECT id::text, name, email, password, role, created_at FROM users WHERE id = $1`, id))
}

func (p *Postgres) scanUser(row pgx.Row) (domain.User, error) {
	var u domain.User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.CreatedAt)
	if err == pgx.ErrNoRows {
		return domain.User{}, domain.NewError(domain.CodeNotFound, "user not found", nil)
	}
	if err != nil {
		return domain.User{}, internalErr("failed to fetch user", err)
	}
	return u, nil
}

func (p *Postgres) CreateJob(ctx context.Context, j domain.Job) error {
	_, err := p.pool.Exec(ctx,
		`INSERT INTO jobs (id, customer_id, category_id, title, description, budget_min, budget_max, currency, status, created_at, updated_at)
         VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $10)`,
		j.ID, j.CustomerID, j.CategoryID, j.Title, j.Description, j.BudgetMin, j.BudgetMax, j.Currency, j.Status, j.CreatedAt,
	)
	if err != nil {
		return internalErr("failed to create job", err)
	}
	return nil
}

const jobColumns = `id::text, customer_id::text, COALESCE(category_id, ''), title, COALESCE(description, ''),
    budget_min, budget_max, currency, status, created_at, updated_at`

func (p *Postgres) GetJob(ctx context.Context, id string) (domain.Job, error) {
	var j domain.Job
	err := p.pool.QueryRow(ctx,
		`SELECT `+jobColumns+` FROM jobs WHERE id = $1`, id,
	).Scan(&j.ID, &j.CustomerID, &j.CategoryID, &j.Title, &j.Description,
		&j.BudgetMin, &j.BudgetMax, &j.Currency, &j.Status, &j.CreatedAt, &j.UpdatedAt)
	if err == pgx.ErrNoRows {
		return domain.Job{}, domain.NewError(domain.CodeNotFound, "job not found", nil)
	}
	if err != nil {
		return domain.Job{}, internalErr("failed to fetch job", err)
	}
	return j, nil
}

func (p *Postgres) ListJobs(ctx context.Context, f JobFilter) ([]domain.Job, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT `+jobColumns+` FROM jobs
         WHERE ($1 = '' OR status = $1)
           AND ($2 = '' OR customer_id::text = $2)
           AND ($3 = '' OR category_id = $3)
         ORDER BY created_at DESC`,
		string(f.Status), f.CustomerID, f.CategoryID,
	)
	if err != nil {
		return nil, internalErr("failed to list jobs", err)
	}
	defer rows.Close()

	var jobs []domain.Job
	for rows.Next() {
		var j domain.Job
		if err := rows.Scan(&j.ID, &j.CustomerID, &j.CategoryID, &j.Title, &j.Description,
			&j.BudgetMin, &j.BudgetMax, &j.Currency, &j.Status, &j.CreatedAt, &j.UpdatedAt); err != nil {
			return nil, internalErr("failed to parse job", err)
		}
		jobs = append(jobs, j)
	}
	return jobs, nil
}

func (p *Postgres) UpdateJobStatus(ctx context.Context, id string, from, to domain.JobStatus) error {
	res, err := p.pool.Exec(ctx,
		`UPDATE jobs SET status = $3, updated_at = NOW() WHERE id = $1 AND status = $2`,
		id, from, to,
	)
	if err != nil {
		return internalErr("failed to update job status", err)
	}
	if res.RowsAffected() == 0 {
		var exists bool
		if e := p.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM jobs WHERE id = $1)`, id).Scan(&exists); e == nil && !exists {
			return domain.NewError(domain.CodeNotFound, "job not found", nil)
		}
		return domain.NewError(domain.CodeInvalidState, "job is not "+string(from), nil)
	}
	return nil
}

func (p *Postgres) DeleteJob(ctx context.Context, id string) error {
	res, err := p.pool.Exec(ctx, `DELETE FROM jobs WHERE id = $1`, id)
	if err != nil {
		return internalErr("failed to delete job", err)
	}
	if res.RowsAffected() == 0 {
		return domain.NewError(domain.CodeNotFound, "job not found", nil)
	}
	return nil
}

func (p *Postgres) SubmitBid(ctx context.Context, b domain.Bid, n domain.Notification) error {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return internalErr("transaction start failed", err)
	}
	defer tx.Rollback(ctx)

	var status domain.JobStatus
	err = tx.QueryRow(ctx, `SELECT status FROM jobs WHERE id = $1 FOR UPDATE`, b.JobID).Scan(&status)
	if err == pgx.ErrNoRows {
		return domain.NewError(domain.CodeNotFound, "job not found", nil)
	}
	if err != nil {
		return internalErr("failed to fetch job", err)
	}
	if status != domain.JobOpen {
		return domain.NewError(domain.CodeInvalidState, "job is not open for bids", nil)
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO bids (id, job_id, craftsman_id, price, currency, estimated_days, message, status, created_at, updated_at)
         VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $9)`,
		b.ID, b.JobID, b.CraftsmanID, b.Price, b.Currency, b.EstimatedDays, b.Message, b.Status, b.CreatedAt,
	)
	if isUniqueViolation(err) {
		return domain.NewError(domain.CodeConflict, "bid already submitted for this job", err)
	}
	if err != nil {
		return internalErr("failed to create bid", err)
	}

	if err := insertNotificationTx(ctx, tx, n); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return internalErr("commit failed", err)
	}
	return nil
}

const bidColumns = `id::text, job_id::text, craftsman_id::text, price, currency, estimated_days,
    COALESCE(message, ''), status, created_at, updated_at`

func (p *Postgres) GetBid(ctx context.Context, id string) (domain.Bid, error) {
	var b domain.Bid
	err := p.pool.QueryRow(ctx, `SELECT `+bidColumns+` FROM bids WHERE id = $1`, id).
		Scan(&b.ID, &b.JobID, &b.CraftsmanID, &b.Price, &b.Currency, &b.EstimatedDays,
			&b.Message, &b.Status, &b.CreatedAt, &b.UpdatedAt)
	if err == pgx.ErrNoRows {
		return domain.Bid{}, domain.NewError(domain.CodeNotFound, "bid not found", nil)
	}
	if err != nil {
		return domain.Bid{}, internalErr("failed to fetch bid", err)
	}
	return b, nil
}

func (p *Postgres) ListBidsByJob(ctx context.Context, jobID string) ([]domain.Bid, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT `+bidColumns+` FROM bids WHERE job_id = $1 ORDER BY created_at ASC`, jobID)
	if err != nil {
		return nil, internalErr("failed to list bids", err)
	}
	defer rows.Close()

	var bids []domain.Bid
	for rows.Next() {
		var b domain.Bid
		if err := rows.Scan(&b.ID, &b.JobID, &b.CraftsmanID, &b.Price, &b.Currency, &b.EstimatedDays,
			&b.Message, &b.Status, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, internalErr("failed to parse bid", err)
		}
		bids = append(bids, b)
	}
	return bids, nil
}

func (p *Postgres) WithdrawBid(ctx context.Context, id string) error {
	return p.setBidStatus(ctx, id, domain.BidPending, domain.BidWithdrawn)
}

func (p *Postgres) RejectBid(ctx context.Context, id string, n domain.Notification) error {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return internalErr("transaction start failed", err)
	}
	defer tx.Rollback(ctx)

	res, err := tx.Exec(ctx,
		`UPDATE bids SET status = $2, updated_at = NOW() WHERE id = $1 AND status = 'pending'`,
		id, domain.BidRejected,
	)
	if err != nil {
		return internalErr("failed to update bid", err)
	}
	if res.RowsAffected() == 0 {
		return p.bidCASFailure(ctx, id)
	}
	if err := insertNotificationTx(ctx, tx, n); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return internalErr("commit failed", err)
	}
	return nil
}

func (p *Postgres) setBidStatus(ctx context.Context, id string, from, to domain.BidStatus) error {
	res, err := p.pool.Exec(ctx,
		`UPDATE bids SET status = $3, updated_at = NOW() WHERE id = $1 AND status = $2`,
		id, from, to,
	)
	if err != nil {
		return internalErr("failed to update bid", err)
	}
	if res.RowsAffected() == 0 {
		return p.bidCASFailure(ctx, id)
	}
	return nil
}

func (p *Postgres) bidCASFailure(ctx context.Context, id string) error {
	var exists bool
	if err := p.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM bids WHERE id = $1)`, id).Scan(&exists); err == nil && !exists {
		return domain.NewError(domain.CodeNotFound, "bid not found", nil)
	}
	return domain.NewError(domain.CodeInvalidState, "bid is not pending", nil)
}

func (p *Postgres) AcceptBid(ctx context.Context, jobID, bidID string, conv domain.Conversation, n domain.Notification) (domain.Conversation, error) {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return domain.Conversation{}, internalErr("transaction start failed", err)
	}
	defer tx.Rollback(ctx)

	// The job CAS goes first: it takes the row lock, so of two
	// concurrent accepts the second observes in_progress and fails here.
	res, err := tx.Exec(ctx,
		`UPDATE jobs SET status = 'in_progress', updated_at = NOW() WHERE id = $1 AND status = 'open'`, jobID)
	if err != nil {
		return domain.Conversation{}, internalErr("failed to update job", err)
	}
	if res.RowsAffected() == 0 {
		var exists bool
		if e := p.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM jobs WHERE id = $1)`, jobID).Scan(&exists); e == nil && !exists {
			return domain.Conversation{}, domain.NewError(domain.CodeNotFound, "job not found", nil)
		}
		return domain.Conversation{}, domain.NewError(domain.CodeInvalidState, "job already resolved", nil)
	}

	res, err = tx.Exec(ctx,
		`UPDATE bids SET status = 'accepted', updated_at = NOW() WHERE id = $1 AND job_id = $2 AND status = 'pending'`,
		bidID, jobID)
	if err != nil {
		return domain.Conversation{}, internalErr("failed to accept bid", err)
	}
	if res.RowsAffected() == 0 {
		return domain.Conversation{}, p.bidCASFailure(ctx, bidID)
	}

	_, err = tx.Exec(ctx,
		`UPDATE bids SET status = 'rejected', updated_at = NOW() WHERE job_id = $1 AND id <> $2 AND status = 'pending'`,
		jobID, bidID)
	if err != nil {
		return domain.Conversation{}, internalErr("failed to reject competing bids", err)
	}

	if len(conv.Participants) != 2 {
		return domain.Conversation{}, domain.NewError(domain.CodeValidation, "conversation needs two participants", nil)
	}
	out := conv
	var existingID string
	var createdAt, updatedAt time.Time
	err = tx.QueryRow(ctx,
		`SELECT c.id::text, c.created_at, c.updated_at FROM conversations c
         JOIN conversation_participants p1 ON p1.conversation_id = c.id AND p1.user_id = $2
         JOIN conversation_participants p2 ON p2.conversation_id = c.id AND p2.user_id = $3
         WHERE c.job_id = $1`,
		jobID, conv.Participants[0].UserID, conv.Participants[1].UserID,
	).Scan(&existingID, &createdAt, &updatedAt)
	switch err {
	case nil:
		// Reuse the conversation from a prior accept cycle on this job.
		out.ID = existingID
		out.CreatedAt = createdAt
		out.UpdatedAt = updatedAt
	case pgx.ErrNoRows:
		_, err = tx.Exec(ctx,
			`INSERT INTO conversations (id, job_id, created_at, updated_at) VALUES ($1, $2, $3, $3)`,
			conv.ID, conv.JobID, conv.CreatedAt)
		if err != nil {
			return domain.Conversation{}, internalErr("failed to create conversation", err)
		}
		for _, part := range conv.Participants {
			_, err = tx.Exec(ctx,
				`INSERT INTO conversation_participants (conversation_id, user_id) VALUES ($1, $2)`,
				conv.ID, part.UserID)
			if err != nil {
				return domain.Conversation{}, internalErr("failed to add participant", err)
			}
		}
	default:
		return domain.Conversation{}, internalErr("failed to look up conversation", err)
	}

	if err := insertNotificationTx(ctx, tx, n); err != nil {
		return domain.Conversation{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return domain.Conversation{}, internalErr("commit failed", err)
	}
	return out, nil
}

func (p *Postgres) GetConversation(ctx context.Context, id string) (domain.Conversation, error) {
	var c domain.Conversation
	var jobID sql.NullString
	err := p.pool.QueryRow(ctx,
		`SELECT id::text, job_id::text, created_at, updated_at FROM conversations WHERE id = $1`, id,
	).Scan(&c.ID, &jobID, &c.CreatedAt, &c.UpdatedAt)
	if err == pgx.ErrNoRows {
		return domain.Conversation{}, domain.NewError(domain.CodeNotFound, "conversation not found", nil)
	}
	if err != nil {
		return domain.Conversation{}, internalErr("failed to fetch conversation", err)
	}
	if jobID.Valid {
		c.JobID = jobID.String
	}

	rows, err := p.pool.Query(ctx,
		`SELECT user_id::text, last_read_at FROM conversation_participants WHERE conversation_id = $1`, id)
	if err != nil {
		return domain.Conversation{}, internalErr("failed to fetch participants", err)
	}
	defer rows.Close()
	for rows.Next() {
		var part domain.Participant
		var lastRead sql.NullTime
		if err := rows.Scan(&part.UserID, &lastRead); err != nil {
			return domain.Conversation{}, internalErr("failed to parse participant", err)
		}
		if lastRead.Valid {
			t := lastRead.Time
			part.LastReadAt = &t
		}
		c.Participants = append(c.Participants, part)
	}
	return c, nil
}

func (p *Postgres) ListConversationsForUser(ctx context.Context, userID string) ([]ConversationSummary, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT c.id::text,
                COALESCE((SELECT content FROM messages WHERE conversation_id = c.id ORDER BY created_at DESC LIMIT 1), ''),
                (SELECT created_at FROM messages WHERE conversation_id = c.id ORDER BY created_at DESC LIMIT 1),
                (SELECT COUNT(*) FROM messages WHERE conversation_id = c.id AND sender_id <> $1 AND is_read = FALSE)
         FROM conversations c
         JOIN conversation_participants cp ON cp.conversation_id = c.id AND cp.user_id = $1
         ORDER BY c.updated_at DESC`, userID)
	if err != nil {
		return nil, internalErr("failed to list conversations", err)
	}
	defer rows.Close()

	type rowData struct {
		id            string
		lastMessage   string
		lastMessageAt sql.NullTime
		unread        int64
	}
	var data []rowData
	for rows.Next() {
		var r rowData
		if err := rows.Scan(&r.id, &r.lastMessage, &r.lastMessageAt, &r.unread); err != nil {
			return nil, internalErr("failed to parse conversation", err)
		}
		data = append(data, r)
	}
	rows.Close()

	var res []ConversationSummary
	for _, r := range data {
		conv, err := p.GetConversation(ctx, r.id)
		if err != nil {
			return nil, err
		}
		s := ConversationSummary{Conversation: conv, LastMessage: r.lastMessage, Unread: r.unread}
		if r.lastMessageAt.Valid {
			s.LastMessageAt = r.lastMessageAt.Time
		}
		res = append(res, s)
	}
	return res, nil
}

func (p *Postgres) AppendMessage(ctx context.Context, m domain.Message, notifs []domain.Notification) error {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return internalErr("transaction start failed", err)
	}
	defer tx.Rollback(ctx)

	res, err := tx.Exec(ctx,
		`UPDATE conversations SET updated_at = $2 WHERE id = $1`, m.ConversationID, m.CreatedAt)
	if err != nil {
		return internalErr("failed to bump conversation", err)
	}
	if res.RowsAffected() == 0 {
		return domain.NewError(domain.CodeNotFound, "conversation not found", nil)
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO messages (id, conversation_id, sender_id, content, is_read, created_at)
         VALUES ($1, $2, $3, $4, FALSE, $5)`,
		m.ID, m.ConversationID, m.SenderID, m.Content, m.CreatedAt)
	if err != nil {
		return internalErr("failed to insert message", err)
	}

	for _, n := range notifs {
		if err := insertNotificationTx(ctx, tx, n); err != nil {
			return err
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return internalErr("commit failed", err)
	}
	return nil
}

func (p *Postgres) MarkConversationRead(ctx context.Context, convID, userID string, at time.Time) error {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return internalErr("transaction start failed", err)
	}
	defer tx.Rollback(ctx)

	var exists bool
	if err := tx.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM conversations WHERE id = $1)`, convID).Scan(&exists); err != nil {
		return internalErr("failed to fetch conversation", err)
	}
	if !exists {
		return domain.NewError(domain.CodeNotFound, "conversation not found", nil)
	}

	_, err = tx.Exec(ctx,
		`UPDATE messages SET is_read = TRUE
         WHERE conversation_id = $1 AND sender_id <> $2 AND is_read = FALSE`, convID, userID)
	if err != nil {
		return internalErr("failed to mark messages read", err)
	}
	_, err = tx.Exec(ctx,
		`UPDATE conversation_participants SET last_read_at = $3
         WHERE conversation_id = $1 AND user_id = $2`, convID, userID, at)
	if err != nil {
		return internalErr("failed to advance read cursor", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return internalErr("commit failed", err)
	}
	return nil
}

func (p *Postgres) ListMessages(ctx context.Context, convID string, limit int) ([]domain.Message, error) {
	// Most-recent-bounded, returned in chronological order.
	query := `SELECT id::text, conversation_id::text, sender_id::text, content, is_read, created_at
              FROM messages WHERE conversation_id = $1 ORDER BY created_at ASC`
	var rows pgx.Rows
	var err error
	if limit > 0 {
		query = `SELECT * FROM (
                     SELECT id::text, conversation_id::text, sender_id::text, content, is_read, created_at
                     FROM messages WHERE conversation_id = $1 ORDER BY created_at DESC LIMIT $2
                 ) recent ORDER BY created_at ASC`
		rows, err = p.pool.Query(ctx, query, convID, limit)
	} else {
		rows, err = p.pool.Query(ctx, query, convID)
	}
	if err != nil {
		return nil, internalErr("failed to list messages", err)
	}
	defer rows.Close()

	var msgs []domain.Message
	for rows.Next() {
		var m domain.Message
		if err := rows.Scan(&m.ID, &m.ConversationID, &m.SenderID, &m.Content, &m.IsRead, &m.CreatedAt); err != nil {
			return nil, internalErr("failed to parse message", err)
		}
		msgs = append(msgs, m)
	}
	return msgs, nil
}

func (p *Postgres) UnreadMessageCount(ctx context.Context, convID, userID string) (int64, error) {
	var count int64
	err := p.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM messages WHERE conversation_id = $1 AND sender_id <> $2 AND is_read = FALSE`,
		convID, userID).Scan(&count)
	if err != nil {
		return 0, internalErr("failed to compute unread count", err)
	}
	return count, nil
}

type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

func insertNotificationTx(ctx context.Context, tx execer, n domain.Notification) error {
	var relatedID any
	if n.RelatedID != "" {
		relatedID = n.RelatedID
	}
	_, err := tx.Exec(ctx,
		`INSERT INTO notifications (id, user_id, type, title_ar, title_en, body_ar, body_en, link, related_id, is_read, created_at)
         VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, FALSE, $10)`,
		n.ID, n.UserID, n.Type, n.TitleAr, n.TitleEn, n.BodyAr, n.BodyEn, n.Link, relatedID, n.CreatedAt)
	if err != nil {
		return internalErr("failed to insert notification", err)
	}
	return nil
}

func (p *Postgres) CreateNotification(ctx context.Context, n domain.Notification) error {
	return insertNotificationTx(ctx, p.pool, n)
}

func (p *Postgres) ListNotifications(ctx context.Context, userID string) ([]domain.Notification, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT id::text, user_id::text, type, title_ar, title_en, COALESCE(body_ar, ''), COALESCE(body_en, ''),
                COALESCE(link, ''), COALESCE(related_id::text, ''), is_read, created_at, read_at
         FROM notifications WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, internalErr("failed to list notifications", err)
	}
	defer rows.Close()

	var res []domain.Notification
	for rows.Next() {
		var n domain.Notification
		var readAt sql.NullTime
		if err := rows.Scan(&n.ID, &n.UserID, &n.Type, &n.TitleAr, &n.TitleEn, &n.BodyAr, &n.BodyEn,
			&n.Link, &n.RelatedID, &n.IsRead, &n.CreatedAt, &readAt); err != nil {
			return nil, internalErr("failed to parse notification", err)
		}
		if readAt.Valid {
			t := readAt.Time
			n.ReadAt = &t
		}
		res = append(res, n)
	}
	return res, nil
}

func (p *Postgres) UnreadNotificationCount(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := p.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND is_read = FALSE`, userID).Scan(&count)
	if err != nil {
		return 0, internalErr("failed to compute unread count", err)
	}
	return count, nil
}

func (p *Postgres) MarkNotificationRead(ctx context.Context, userID, id string) error {
	res, err := p.pool.Exec(ctx,
		`UPDATE notifications SET is_read = TRUE, read_at = NOW()
         WHERE id = $1 AND user_id = $2 AND is_read = FALSE`, id, userID)
	if err != nil {
		return internalErr("failed to mark notification read", err)
	}
	if res.RowsAffected() == 0 {
		// Already read is a no-op; only a missing row is an error.
		var exists bool
		if e := p.pool.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM notifications WHERE id = $1 AND user_id = $2)`, id, userID).Scan(&exists); e == nil && exists {
			return nil
		}
		return domain.NewError(domain.CodeNotFound, "notification not found", nil)
	}
	return nil
}

func (p *Postgres) MarkAllNotificationsRead(ctx context.Context, userID string) error {
	_, err := p.pool.Exec(ctx,
		`UPDATE notifications SET is_read = TRUE, read_at = NOW()
         WHERE user_id = $1 AND is_read = FALSE`, userID)
	if err != nil {
		return internalErr("failed to mark notifications read", err)
	}
	return nil
}

func (p *Postgres) CreateReview(ctx context.Context, r domain.Review, n domain.Notification) error {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return internalErr("transaction start failed", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx,
		`INSERT INTO reviews (id, job_id, reviewer_id, craftsman_id, rating, comment, created_at)
         VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		r.ID, r.JobID, r.ReviewerID, r.CraftsmanID, r.Rating, r.Comment, r.CreatedAt)
	if isUniqueViolation(err) {
		return domain.NewError(domain.CodeConflict, "job already reviewed", err)
	}
	if err != nil {
		return internalErr("failed to create review", err)
	}
	if err := insertNotificationTx(ctx, tx, n); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return internalErr("commit failed", err)
	}
	return nil
}

func (p *Postgres) ListReviewsForCraftsman(ctx context.Context, craftsmanID string) ([]domain.Review, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT id::text, job_id::text, reviewer_id::text, craftsman_id::text, rating, COALESCE(comment, ''), created_at
         FROM reviews WHERE craftsman_id = $1 ORDER BY created_at DESC`, craftsmanID)
	if err != nil {
		return nil, internalErr("failed to list reviews", err)
	}
	defer rows.Close()

	var res []domain.Review
	for rows.Next() {
		var r domain.Review
		if err := rows.Scan(&r.ID, &r.JobID, &r.ReviewerID, &r.CraftsmanID, &r.Rating, &r.Comment, &r.CreatedAt); err != nil {
			return nil, internalErr("failed to parse review", err)
		}
		res = append(res, r)
	}
	return res, nil
}

func (p *Postgres) GetReviewForJob(ctx context.Context, jobID string) (domain.Review, error) {
	var r domain.Review
	err := p.pool.QueryRow(ctx,
		`SELECT id::text, job_id::text, reviewer_id::text, craftsman_id::text, rating, COALESCE(comment, ''), created_at
         FROM reviews WHERE job_id = $1`, jobID).
		Scan(&r.ID, &r.JobID, &r.ReviewerID, &r.CraftsmanID, &r.Rating, &r.Comment, &r.CreatedAt)
	if err == pgx.ErrNoRows {
		return domain.Review{}, domain.NewError(domain.CodeNotFound, "review not found", nil)
	}
	if err != nil {
		return domain.Review{}, internalErr("failed to fetch review", err)
	}
	return r, nil
}
