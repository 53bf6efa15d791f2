// Package reminders decides which reminder notifications are due for each
// onboarded user and hands them to a sender.
package reminders

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/GokhanOfficial/CaloriX/internal/analytics"
	"github.com/GokhanOfficial/CaloriX/internal/gateway"
	"github.com/GokhanOfficial/CaloriX/internal/model"
	"github.com/GokhanOfficial/CaloriX/internal/notify"
	"github.com/GokhanOfficial/CaloriX/internal/nutrition"
)

const DefaultZone = "Europe/Istanbul"

const (
	defaultWeighInDays   = 7
	defaultWaterTargetMl = 2500
	dailyLogQuiet        = 24 * time.Hour
)

const dailyLogMessage = "Bugün de sağlıklı beslenmeye devam! Öğünlerini kaydetmeyi unutma 💪"

type Store interface {
	gateway.ProfileStore
	gateway.NotificationStore
	analytics.Store
}

type Sender interface {
	Send(ctx context.Context, msg notify.Message) (model.Notification, error)
}

type Checker struct {
	store  Store
	sender Sender
	zone   *time.Location
	now    func() time.Time
	log    *slog.Logger
}

type Option func(*Checker)

func WithClock(now func() time.Time) Option {
	return func(c *Checker) { c.now = now }
}

func WithZone(zone *time.Location) Option {
	return func(c *Checker) {
		if zone != nil {
			c.zone = zone
		}
	}
}

func WithLogger(log *slog.Logger) Option {
	return func(c *Checker) {
		if log != nil {
			c.log = log
		}
	}
}

func NewChecker(store Store, sender Sender, opts ...Option) *Checker {
	c := &Checker{store: store, sender: sender, zone: LoadZone(DefaultZone), now: time.Now, log: slog.Default()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// LoadZone resolves name, falling back to a fixed UTC+3 offset when the
// zone database is unavailable.
func LoadZone(name string) *time.Location {
	if strings.TrimSpace(name) == "" {
		name = DefaultZone
	}
	if loc, err := time.LoadLocation(name); err == nil {
		return loc
	}
	return time.FixedZone("UTC+3", 3*60*60)
}

type Summary struct {
	Profiles int
	Sent     []model.Notification
	Failed   int
}

// Run evaluates every onboarded profile once. Failures for one user are
// logged and counted; the remaining users are still checked.
func (c *Checker) Run(ctx context.Context) (Summary, error) {
	now := c.now().In(c.zone)
	profiles, err := c.store.ListProfiles(ctx, true)
	if err != nil {
		return Summary{}, fmt.Errorf("list profiles: %w", err)
	}
	c.log.Info("checking reminders", "at", now.Format(time.RFC3339), "hour", now.Hour(), "profiles", len(profiles))

	var sum Summary
	for _, p := range profiles {
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		sum.Profiles++
		if err := c.checkProfile(ctx, p, now, &sum); err != nil {
			sum.Failed++
			c.log.Error("reminder check failed", "user", p.ID, "err", err)
		}
	}
	return sum, nil
}

func (c *Checker) checkProfile(ctx context.Context, p model.Profile, now time.Time, sum *Summary) error {
	prefs, err := c.store.ListPreferences(ctx, p.ID)
	if err != nil {
		return fmt.Errorf("load preferences: %w", err)
	}
	byType := make(map[model.NotificationType]model.NotificationPreference, len(prefs))
	for _, pref := range prefs {
		byType[pref.NotificationType] = pref
	}

	rules := []struct {
		typ   model.NotificationType
		check rule
	}{
		{model.NotifyWeighIn, c.weighIn},
		{model.NotifyWater, c.water},
		{model.NotifyDailyLog, c.dailyLog},
		{model.NotifyWeeklySummary, c.weeklySummary},
	}
	var firstErr error
	for _, r := range rules {
		var pref *model.NotificationPreference
		if v, ok := byType[r.typ]; ok {
			pref = &v
		}
		msg, mark, err := r.check(ctx, p, pref, now)
		if err == nil && msg != nil {
			err = c.deliver(ctx, p.ID, *msg, mark, sum)
		}
		if err != nil {
			c.log.Warn("reminder failed", "user", p.ID, "type", r.typ, "err", err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

// rule returns the message to send, if any, and the profile stamp to
// write once it is sent.
type rule func(ctx context.Context, p model.Profile, pref *model.NotificationPreference, now time.Time) (*notify.Message, *model.ProfilePatch, error)

func (c *Checker) deliver(ctx context.Context, userID string, msg notify.Message, mark *model.ProfilePatch, sum *Summary) error {
	msg.UserID = userID
	n, err := c.sender.Send(ctx, msg)
	if err != nil {
		return fmt.Errorf("send %s: %w", msg.Type, err)
	}
	sum.Sent = append(sum.Sent, n)
	if mark != nil {
		if err := c.store.UpdateProfile(ctx, userID, *mark); err != nil {
			return fmt.Errorf("mark %s reminder: %w", msg.Type, err)
		}
	}
	return nil
}

func enabled(pref *model.NotificationPreference) bool {
	return pref != nil && (pref.PushEnabled || pref.EmailEnabled)
}

func (c *Checker) weighIn(ctx context.Context, p model.Profile, pref *model.NotificationPreference, now time.Time) (*notify.Message, *model.ProfilePatch, error) {
	if !enabled(pref) && !(pref == nil && p.WeighInFrequencyDays > 0) {
		return nil, nil, nil
	}
	hour := 9
	if pref != nil {
		hour = pref.StartHour
	}
	if now.Hour() != hour {
		return nil, nil, nil
	}
	freq := p.WeighInFrequencyDays
	if freq <= 0 {
		freq = defaultWeighInDays
	}
	if p.LastWeighInReminder != nil && daysBetween(*p.LastWeighInReminder, now) < freq {
		return nil, nil, nil
	}

	last, err := c.store.ListWeights(ctx, gateway.WeightFilter{UserID: p.ID, Order: gateway.OrderDesc, Limit: 1})
	if err != nil {
		return nil, nil, fmt.Errorf("load last weight: %w", err)
	}
	sinceWeight := freq + 1
	if len(last) > 0 {
		if day, err := time.ParseInLocation(model.DateLayout, last[0].EntryDate, c.zone); err == nil {
			sinceWeight = daysBetween(day, now)
		}
	}
	if sinceWeight < freq {
		return nil, nil, nil
	}
	stamp := now.UTC()
	return &notify.Message{
		Type:  model.NotifyWeighIn,
		Title: "⚖️ Tartılma Zamanı!",
		Body:  fmt.Sprintf("Son tartılmanın üzerinden %d gün geçti. Bugün tartılmayı unutma!", sinceWeight),
	}, &model.ProfilePatch{LastWeighInReminder: &stamp}, nil
}

func (c *Checker) water(ctx context.Context, p model.Profile, pref *model.NotificationPreference, now time.Time) (*notify.Message, *model.ProfilePatch, error) {
	if !enabled(pref) {
		return nil, nil, nil
	}
	interval := pref.IntervalHours
	if interval <= 0 {
		interval = 3
	}
	if now.Hour() < pref.StartHour || now.Hour() > pref.EndHour {
		return nil, nil, nil
	}
	if p.LastWaterReminder != nil && now.Sub(*p.LastWaterReminder) < time.Duration(interval)*time.Hour {
		return nil, nil, nil
	}

	today := model.FormatDate(now)
	entries, err := c.store.ListWater(ctx, gateway.WaterFilter{UserID: p.ID, FromDate: today, ToDate: today})
	if err != nil {
		return nil, nil, fmt.Errorf("load today's water: %w", err)
	}
	total := 0
	for _, e := range entries {
		total += e.AmountMl
	}
	target := p.DailyWaterTargetMl
	if target <= 0 {
		target = defaultWaterTargetMl
	}
	pct := int(nutrition.Round(float64(total) / float64(target) * 100))
	if pct >= 100 {
		return nil, nil, nil
	}
	stamp := now.UTC()
	return &notify.Message{
		Type:  model.NotifyWater,
		Title: "💧 Su İçme Zamanı!",
		Body:  fmt.Sprintf("Bugün hedefinizin %%%d'ine ulaştınız. Su içmeyi unutmayın!", pct),
	}, &model.ProfilePatch{LastWaterReminder: &stamp}, nil
}

func (c *Checker) dailyLog(ctx context.Context, p model.Profile, pref *model.NotificationPreference, now time.Time) (*notify.Message, *model.ProfilePatch, error) {
	if !enabled(pref) || now.Hour() != pref.StartHour {
		return nil, nil, nil
	}
	yesterday := model.FormatDate(now.AddDate(0, 0, -1))
	recent, err := c.store.ListMeals(ctx, gateway.MealFilter{UserID: p.ID, FromDate: yesterday, Limit: 1})
	if err != nil {
		return nil, nil, fmt.Errorf("load recent meals: %w", err)
	}
	if len(recent) > 0 {
		return nil, nil, nil
	}
	if p.LastDailyLogReminder != nil && now.Sub(*p.LastDailyLogReminder) < dailyLogQuiet {
		return nil, nil, nil
	}
	stamp := now.UTC()
	return &notify.Message{
		Type:  model.NotifyDailyLog,
		Title: "📝 Kayıt Hatırlatması",
		Body:  dailyLogMessage,
	}, &model.ProfilePatch{LastDailyLogReminder: &stamp}, nil
}

func (c *Checker) weeklySummary(ctx context.Context, p model.Profile, pref *model.NotificationPreference, now time.Time) (*notify.Message, *model.ProfilePatch, error) {
	if !enabled(pref) || int(now.Weekday()) != pref.SummaryDay || now.Hour() != pref.SummaryHour {
		return nil, nil, nil
	}
	from := now.AddDate(0, 0, -7)
	to := now.AddDate(0, 0, -1)
	fromKey, toKey := model.FormatDate(from), model.FormatDate(to)

	meals, err := c.store.ListMeals(ctx, gateway.MealFilter{UserID: p.ID, FromDate: fromKey, ToDate: toKey})
	if err != nil {
		return nil, nil, fmt.Errorf("load week meals: %w", err)
	}
	water, err := c.store.ListWater(ctx, gateway.WaterFilter{UserID: p.ID, FromDate: fromKey, ToDate: toKey})
	if err != nil {
		return nil, nil, fmt.Errorf("load week water: %w", err)
	}
	weights, err := c.store.ListWeights(ctx, gateway.WeightFilter{UserID: p.ID, FromDate: fromKey, ToDate: model.FormatDate(now)})
	if err != nil {
		return nil, nil, fmt.Errorf("load week weights: %w", err)
	}

	avg := analytics.ComputeAverages(analytics.PeriodSeries(meals, water, from, to, now))
	trend := analytics.WeightTrend(weights)
	change := 0.0
	if len(trend) >= 2 {
		change = nutrition.Round1(trend[len(trend)-1].WeightKg - trend[0].WeightKg)
	}
	return &notify.Message{
		Type:  model.NotifyWeeklySummary,
		Title: "📊 Haftalık Özetiniz",
		Body:  summaryHTML(avg, change),
	}, nil, nil
}

func summaryHTML(avg analytics.Averages, weightChange float64) string {
	var b strings.Builder
	b.WriteString(`<p><strong>Bu hafta:</strong></p>`)
	b.WriteString(`<ul style="margin: 10px 0; padding-left: 20px;">`)
	fmt.Fprintf(&b, `<li>Günlük ortalama kalori: <strong>%d kcal</strong></li>`, avg.Calories)
	fmt.Fprintf(&b, `<li>Günlük ortalama su: <strong>%d ml</strong></li>`, avg.WaterMl)
	if weightChange != 0 {
		sign := ""
		if weightChange > 0 {
			sign = "+"
		}
		fmt.Fprintf(&b, `<li>Kilo değişimi: <strong>%s%.1f kg</strong></li>`, sign, weightChange)
	}
	b.WriteString(`</ul><p>Harika iş çıkardın! Devam et 🎯</p>`)
	return b.String()
}

func daysBetween(from, to time.Time) int {
	return int(math.Floor(to.Sub(from).Hours() / 24))
}
