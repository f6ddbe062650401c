package notify

import (
	"time"

	"github.com/google/uuid"

	"github.com/0xsim0/My-Hammer-Syria-sub000/internal/domain"
)

// Builders for the bilingual notification records each domain event
// produces. IDs are assigned here so callers can push the pointer after
// the store call that persisted the row.

func newNotification(userID string, ntype domain.NotificationType, relatedID, link string) domain.Notification {
	return domain.Notification{
		ID:        uuid.New().String(),
		UserID:    userID,
		Type:      ntype,
		RelatedID: relatedID,
		Link:      link,
		CreatedAt: time.Now().UTC(),
	}
}

// NewBid notifies the job's customer that a craftsman placed a bid.
func NewBid(customerID string, job domain.Job, bid domain.Bid) domain.Notification {
	n := newNotification(customerID, domain.NotifNewBid, bid.ID, "/jobs/"+job.ID)
	n.TitleAr = "عرض جديد على طلبك"
	n.TitleEn = "New bid on your job"
	n.BodyAr = "تلقى طلبك \"" + job.Title + "\" عرضاً جديداً"
	n.BodyEn = "Your job \"" + job.Title + "\" received a new bid"
	return n
}

// BidAccepted notifies the craftsman whose bid was accepted.
func BidAccepted(craftsmanID string, job domain.Job, bid domain.Bid) domain.Notification {
	n := newNotification(craftsmanID, domain.NotifBidAccepted, bid.ID, "/jobs/"+job.ID)
	n.TitleAr = "تم قبول عرضك"
	n.TitleEn = "Your bid was accepted"
	n.BodyAr = "قبل الزبون عرضك على \"" + job.Title + "\""
	n.BodyEn = "The customer accepted your bid on \"" + job.Title + "\""
	return n
}

// BidRejected notifies the craftsman whose bid was rejected.
func BidRejected(craftsmanID string, job domain.Job, bid domain.Bid) domain.Notification {
	n := newNotification(craftsmanID, domain.NotifBidRejected, bid.ID, "/jobs/"+job.ID)
	n.TitleAr = "تم رفض عرضك"
	n.TitleEn = "Your bid was rejected"
	n.BodyAr = "رفض الزبون عرضك على \"" + job.Title + "\""
	n.BodyEn = "The customer declined your bid on \"" + job.Title + "\""
	return n
}

// JobCompleted notifies the accepted craftsman that the customer marked
// the job complete.
func JobCompleted(craftsmanID string, job domain.Job) domain.Notification {
	n := newNotification(craftsmanID, domain.NotifJobCompleted, job.ID, "/jobs/"+job.ID)
	n.TitleAr = "اكتمل العمل"
	n.TitleEn = "Job completed"
	n.BodyAr = "أكد الزبون اكتمال \"" + job.Title + "\""
	n.BodyEn = "The customer confirmed completion of \"" + job.Title + "\""
	return n
}

// NewMessage notifies a conversation participant about a message they
// have not seen yet.
func NewMessage(recipientID string, msg domain.Message) domain.Notification {
	n := newNotification(recipientID, domain.NotifNewMessage, msg.ID, "/conversations/"+msg.ConversationID)
	n.TitleAr = "رسالة جديدة"
	n.TitleEn = "New message"
	body := msg.Content
	if r := []rune(body); len(r) > 120 {
		body = string(r[:120])
	}
	n.BodyAr = body
	n.BodyEn = body
	return n
}

// NewReview notifies the craftsman about a review on a completed job.
func NewReview(craftsmanID string, job domain.Job, review domain.Review) domain.Notification {
	n := newNotification(craftsmanID, domain.NotifNewReview, review.ID, "/jobs/"+job.ID)
	n.TitleAr = "تقييم جديد"
	n.TitleEn = "New review"
	n.BodyAr = "ترك الزبون تقييماً على \"" + job.Title + "\""
	n.BodyEn = "The customer left a review on \"" + job.Title + "\""
	return n
}
