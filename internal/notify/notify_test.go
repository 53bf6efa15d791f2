package notify

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	awssns "github.com/aws/aws-sdk-go-v2/service/sns"

	"github.com/GokhanOfficial/CaloriX/internal/db"
	"github.com/GokhanOfficial/CaloriX/internal/model"
	"github.com/GokhanOfficial/CaloriX/internal/store"
)

type fakePush struct {
	err  error
	sent []Message
}

func (f *fakePush) SendPush(_ context.Context, _ string, msg Message) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, msg)
	return nil
}

type fakeEmail struct {
	err  error
	to   []string
	html []string
}

func (f *fakeEmail) SendEmail(_ context.Context, to, _ string, html string) error {
	if f.err != nil {
		return f.err
	}
	f.to = append(f.to, to)
	f.html = append(f.html, html)
	return nil
}

func newTestStore(t *testing.T, email string, push bool) *store.Store {
	t.Helper()
	sqldb, err := db.OpenMigrated(filepath.Join(t.TempDir(), "calorix.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { sqldb.Close() })
	st := store.New(sqldb)
	ctx := context.Background()
	if err := st.EnsureProfile(ctx, "u1"); err != nil {
		t.Fatalf("ensure profile: %v", err)
	}
	name := "Ayşe"
	if err := st.UpdateProfile(ctx, "u1", model.ProfilePatch{Email: &email, DisplayName: &name, PushNotificationsEnabled: &push}); err != nil {
		t.Fatalf("update profile: %v", err)
	}
	return st
}

func quiet() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func TestSendHonorsPerTypeChannels(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	st := newTestStore(t, "ayse@example.com", true)
	push, email := &fakePush{}, &fakeEmail{}
	d := NewDispatcher(st, push, email, quiet())

	n, err := d.Send(ctx, Message{UserID: "u1", Type: model.NotifyWater, Title: "💧 Su İçme Zamanı!", Body: "Bugün hedefinizin %40'ine ulaştınız."})
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if !n.PushSent || n.EmailSent || len(push.sent) != 1 || len(email.to) != 0 {
		t.Fatalf("expected push only for water, got %+v push=%d email=%d", n, len(push.sent), len(email.to))
	}

	list, err := st.ListNotifications(ctx, "u1", 10)
	if err != nil {
		t.Fatalf("list notifications: %v", err)
	}
	if len(list) != 1 || list[0].Type != model.NotifyWater || !list[0].PushSent || list[0].IsRead {
		t.Fatalf("unexpected stored notifications: %+v", list)
	}
}

func TestSendContinuesAfterChannelFailure(t *testing.T) {
	t.Parallel()

	st := newTestStore(t, "ayse@example.com", true)
	push, email := &fakePush{err: errors.New("endpoint disabled")}, &fakeEmail{}
	d := NewDispatcher(st, push, email, quiet())

	n, err := d.Send(context.Background(), Message{UserID: "u1", Type: model.NotifyWeighIn, Title: "⚖️ Tartılma Zamanı!", Body: "Son tartılmanın üzerinden 8 gün geçti."})
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if n.PushSent || !n.EmailSent {
		t.Fatalf("expected email despite push failure, got %+v", n)
	}
	if email.to[0] != "ayse@example.com" || !strings.Contains(email.html[0], "Merhaba Ayşe") || !strings.Contains(email.html[0], "Kilonu Kaydet") {
		t.Fatalf("unexpected email: %v %q", email.to, email.html[0])
	}
}

func TestSendRespectsMasterToggle(t *testing.T) {
	t.Parallel()

	st := newTestStore(t, "", false)
	push, email := &fakePush{}, &fakeEmail{}
	d := NewDispatcher(st, push, email, quiet())

	n, err := d.Send(context.Background(), Message{UserID: "u1", Type: model.NotifyWeighIn, Title: "t", Body: "b"})
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if n.PushSent || n.EmailSent || len(push.sent)+len(email.to) != 0 {
		t.Fatalf("expected no delivery, got %+v", n)
	}
	if n.ID == "" {
		t.Fatalf("expected the in-app notification to be recorded")
	}
}

func TestSendUnknownUser(t *testing.T) {
	t.Parallel()

	st := newTestStore(t, "", true)
	if _, err := NewDispatcher(st, nil, nil, quiet()).Send(context.Background(), Message{UserID: "nobody", Type: model.NotifyWater}); err == nil {
		t.Fatalf("expected error for unknown user")
	}
}

func TestRenderEmailEscapesPlainBodies(t *testing.T) {
	t.Parallel()

	html, err := renderEmail(Message{Type: model.NotifyDailyLog, Body: "<b>hi</b>"}, "Can")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if strings.Contains(html, "<b>hi</b>") || !strings.Contains(html, "Öğün Ekle") {
		t.Fatalf("expected escaped body and action, got %q", html)
	}

	html, err = renderEmail(Message{Type: model.NotifyWeeklySummary, Body: "<ul><li>x</li></ul>"}, "Can")
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(html, "<ul><li>x</li></ul>") || !strings.Contains(html, "/analytics") {
		t.Fatalf("expected summary markup, got %q", html)
	}
}

type fakeSNS struct{ in *awssns.PublishInput }

func (f *fakeSNS) Publish(_ context.Context, in *awssns.PublishInput, _ ...func(*awssns.Options)) (*awssns.PublishOutput, error) {
	f.in = in
	return &awssns.PublishOutput{MessageId: aws.String("m-1")}, nil
}

type fakeSES struct{ in *ses.SendEmailInput }

func (f *fakeSES) SendEmail(_ context.Context, in *ses.SendEmailInput, _ ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
	f.in = in
	return &ses.SendEmailOutput{MessageId: aws.String("e-1")}, nil
}

func TestSNSPushPublishesToTopic(t *testing.T) {
	t.Parallel()

	client := &fakeSNS{}
	p := SNSPush{Client: client, TopicARN: "arn:aws:sns:eu-central-1:123:calorix"}
	if err := p.SendPush(context.Background(), "u1", Message{Type: model.NotifyWater, Title: "Su", Body: "İç"}); err != nil {
		t.Fatalf("send push: %v", err)
	}
	in := client.in
	if aws.ToString(in.TopicArn) != p.TopicARN || aws.ToString(in.MessageStructure) != "json" {
		t.Fatalf("unexpected publish input: %+v", in)
	}
	if aws.ToString(in.MessageAttributes["user_id"].StringValue) != "u1" {
		t.Fatalf("expected user attribute, got %+v", in.MessageAttributes)
	}
	var payload map[string]string
	if err := json.Unmarshal([]byte(aws.ToString(in.Message)), &payload); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if payload["default"] != "İç" || !strings.Contains(payload["GCM"], `"title":"Su"`) {
		t.Fatalf("unexpected payload: %v", payload)
	}
}

func TestSESMailSendsHTML(t *testing.T) {
	t.Parallel()

	client := &fakeSES{}
	m := SESMail{Client: client, From: "CaloriX <notifications@calorix.app>"}
	if err := m.SendEmail(context.Background(), "a@b.c", "Konu", "<p>x</p>"); err != nil {
		t.Fatalf("send email: %v", err)
	}
	in := client.in
	if in.Destination.ToAddresses[0] != "a@b.c" || aws.ToString(in.Source) != m.From {
		t.Fatalf("unexpected destination: %+v", in)
	}
	if aws.ToString(in.Message.Subject.Data) != "Konu" || aws.ToString(in.Message.Body.Html.Data) != "<p>x</p>" {
		t.Fatalf("unexpected message: %+v", in.Message)
	}
}
