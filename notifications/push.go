package notifications

import (
	"context"
	"encoding/json"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/danielkmetz/ActivityPal-sub002/database"
	"github.com/danielkmetz/ActivityPal-sub002/models"
)

// PushSubscription stores a user's web-push endpoint.
type PushSubscription struct {
	ID     primitive.ObjectID   `bson:"_id,omitempty"`
	UserID primitive.ObjectID   `bson:"userId"`
	Sub    webpush.Subscription `bson:"sub"`
}

// Push fans newly created notifications out over web push. Delivery is fire
// and forget; failures are logged and expired subscriptions are dropped.
type Push struct {
	store      *database.Store
	privateKey string
	publicKey  string
	subscriber string
	log        *zap.Logger
}

func NewPush(store *database.Store, publicKey, privateKey, subscriber string, log *zap.Logger) *Push {
	if publicKey == "" || privateKey == "" {
		return nil
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Push{
		store:      store,
		publicKey:  publicKey,
		privateKey: privateKey,
		subscriber: subscriber,
		log:        log,
	}
}

// PublicKey exposes the VAPID public key for client subscription.
func (p *Push) PublicKey() string {
	return p.publicKey
}

// Subscribe upserts the user's push subscription.
func (p *Push) Subscribe(ctx context.Context, userID primitive.ObjectID, sub webpush.Subscription) error {
	_, err := p.store.PushSubs().ReplaceOne(ctx,
		bson.M{"userId": userID},
		PushSubscription{UserID: userID, Sub: sub},
		options.Replace().SetUpsert(true),
	)
	return err
}

// Send delivers the notification to the user's subscription, if any.
func (p *Push) Send(userID primitive.ObjectID, n models.Notification) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				p.log.Error("panic in push delivery", zap.Any("panic", r))
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		var sub PushSubscription
		err := p.store.PushSubs().FindOne(ctx, bson.M{"userId": userID}).Decode(&sub)
		if err == mongo.ErrNoDocuments {
			return
		}
		if err != nil {
			p.log.Warn("push subscription lookup failed", zap.Error(err))
			return
		}

		payload, err := json.Marshal(map[string]interface{}{
			"title": "ActivityPal",
			"body":  n.Message,
			"data": map[string]interface{}{
				"type":      n.Type,
				"postType":  n.PostType,
				"targetId":  n.TargetID.Hex(),
				"timestamp": n.CreatedAt.Unix(),
			},
		})
		if err != nil {
			p.log.Warn("push payload marshal failed", zap.Error(err))
			return
		}

		resp, err := webpush.SendNotification(payload, &sub.Sub, &webpush.Options{
			Subscriber:      p.subscriber,
			VAPIDPublicKey:  p.publicKey,
			VAPIDPrivateKey: p.privateKey,
			TTL:             30,
		})
		if err != nil {
			p.log.Warn("push delivery failed",
				zap.String("user", userID.Hex()),
				zap.Error(err),
			)
			// Gone means the subscription is dead; drop it.
			if resp != nil && resp.StatusCode == 410 {
				if _, delErr := p.store.PushSubs().DeleteOne(ctx, bson.M{"userId": userID}); delErr != nil {
					p.log.Warn("expired subscription cleanup failed", zap.Error(delErr))
				}
			}
			return
		}
		resp.Body.Close()
	}()
}
