// Package notify records in-app notifications and delivers them over push
// and email.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/GokhanOfficial/CaloriX/internal/gateway"
	"github.com/GokhanOfficial/CaloriX/internal/model"
)

type Message struct {
	UserID string
	Type   model.NotificationType
	Title  string
	// Body is plain text, except for weekly summaries which carry HTML.
	Body string
}

type PushSender interface {
	SendPush(ctx context.Context, userID string, msg Message) error
}

type EmailSender interface {
	SendEmail(ctx context.Context, to, subject, html string) error
}

type Store interface {
	gateway.ProfileStore
	gateway.NotificationStore
}

type Dispatcher struct {
	store Store
	push  PushSender
	email EmailSender
	log   *slog.Logger
}

// NewDispatcher builds a dispatcher; a nil sender disables that channel.
func NewDispatcher(store Store, push PushSender, email EmailSender, log *slog.Logger) *Dispatcher {
	if log == nil {
		log = slog.Default()
	}
	return &Dispatcher{store: store, push: push, email: email, log: log}
}

// Send delivers msg on every channel the user allows and records it. A
// channel failure is logged and does not fail the send.
func (d *Dispatcher) Send(ctx context.Context, msg Message) (model.Notification, error) {
	profile, err := d.store.GetProfile(ctx, msg.UserID)
	if err != nil {
		return model.Notification{}, fmt.Errorf("load profile %s: %w", msg.UserID, err)
	}
	if profile == nil {
		return model.Notification{}, fmt.Errorf("load profile %s: %w", msg.UserID, gateway.ErrNotFound)
	}
	pref, err := d.preference(ctx, msg.UserID, msg.Type)
	if err != nil {
		return model.Notification{}, err
	}

	wantPush := profile.PushNotificationsEnabled && (pref == nil || pref.PushEnabled)
	wantEmail := profile.EmailNotificationsEnabled && (pref == nil || pref.EmailEnabled)

	n := model.Notification{UserID: msg.UserID, Type: msg.Type, Title: msg.Title, Message: msg.Body}
	if wantPush && d.push != nil {
		if err := d.push.SendPush(ctx, msg.UserID, msg); err != nil {
			d.log.Warn("push delivery failed", "user", msg.UserID, "type", msg.Type, "err", err)
		} else {
			n.PushSent = true
		}
	}
	if wantEmail && d.email != nil && strings.TrimSpace(profile.Email) != "" {
		html, err := renderEmail(msg, displayName(*profile))
		if err == nil {
			err = d.email.SendEmail(ctx, profile.Email, msg.Title, html)
		}
		if err != nil {
			d.log.Warn("email delivery failed", "user", msg.UserID, "type", msg.Type, "err", err)
		} else {
			n.EmailSent = true
		}
	}

	saved, err := d.store.InsertNotification(ctx, n)
	if err != nil {
		return n, fmt.Errorf("record notification: %w", err)
	}
	d.log.Info("notification processed", "user", msg.UserID, "type", msg.Type, "push", n.PushSent, "email", n.EmailSent)
	return saved, nil
}

func (d *Dispatcher) preference(ctx context.Context, userID string, t model.NotificationType) (*model.NotificationPreference, error) {
	prefs, err := d.store.ListPreferences(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load notification preferences: %w", err)
	}
	for i := range prefs {
		if prefs[i].NotificationType == t {
			return &prefs[i], nil
		}
	}
	return nil, nil
}

func displayName(p model.Profile) string {
	if name := strings.TrimSpace(p.DisplayName); name != "" {
		return name
	}
	return "Kullanıcı"
}
