package core

import (
	"fmt"
	"log/slog"
	"strings"

	"churchhelper/entity"
	"churchhelper/internal/lib/sl"
)

// SendDailyCelebrations fetches everyone celebrating today, builds one
// consolidated message, sends it through the gateway once, and writes a
// delivery-log entry per celebrant sharing that single send's outcome.
func (c *Core) SendDailyCelebrations() *entity.CelebrationSummary {
	now := c.now()
	date := entity.DateString(now)
	sentDate := now.Format("2006-01-02")

	celebrants, err := c.repo.GetCelebrantsByDate(date)
	if err != nil {
		c.log.With(sl.Err(err)).Error("failed to load today's celebrants")
		return &entity.CelebrationSummary{
			Success: false,
			Error:   fmt.Sprintf("load celebrants: %v", err),
		}
	}

	if len(celebrants) == 0 {
		c.log.Info("no celebrations today", slog.String("date", date))
		return &entity.CelebrationSummary{
			Success: true,
			Message: "No celebrations today",
		}
	}

	message, err := c.buildCelebrationMessage(celebrants, now.Year())
	if err != nil {
		c.log.With(sl.Err(err)).Warn("consolidated message build failed, using simple listing")
		message = c.buildSimpleListing(celebrants)
	}

	result := c.sendMessage(message)

	logged := 0
	for _, celebrant := range celebrants {
		err = c.repo.AppendMessageLog(celebrant.Id, message, sentDate, result.Success, result.Error)
		if err != nil {
			c.log.With(
				slog.Int64("celebrant_id", celebrant.Id),
				sl.Err(err),
			).Error("failed to write message log")
			continue
		}
		logged++
	}

	summary := &entity.CelebrationSummary{
		Success:           result.Success,
		TotalCelebrations: len(celebrants),
	}
	if result.Success {
		summary.SentCount = len(celebrants)
		summary.Message = fmt.Sprintf("Sent celebration message for %d celebrant(s)", len(celebrants))
	} else {
		summary.FailedCount = len(celebrants)
		summary.Error = result.Error
	}

	c.log.Info("celebration broadcast finished",
		slog.String("date", date),
		slog.Int("celebrants", len(celebrants)),
		slog.Int("logged", logged),
		slog.Bool("success", result.Success),
	)
	return summary
}

func (c *Core) sendMessage(message string) *entity.GatewayResult {
	if c.gateway == nil {
		c.log.Error("message gateway not set")
		return &entity.GatewayResult{Success: false, Error: "message gateway not configured"}
	}
	return c.gateway.Send(message)
}

// buildCelebrationMessage groups celebrants by event type into one broadcast:
// greeting, birthday lines, anniversary lines, then a closing with a verse.
func (c *Core) buildCelebrationMessage(celebrants []*entity.Celebrant, year int) (string, error) {
	var birthdays, anniversaries []*entity.Celebrant
	for _, celebrant := range celebrants {
		switch celebrant.EventType {
		case entity.EventBirthday:
			birthdays = append(birthdays, celebrant)
		case entity.EventAnniversary:
			anniversaries = append(anniversaries, celebrant)
		default:
			return "", fmt.Errorf("unknown event type %q for celebrant %d", celebrant.EventType, celebrant.Id)
		}
	}

	var b strings.Builder
	b.WriteString("🎉 *Today's Celebrations* 🎉\n")

	if len(birthdays) > 0 {
		b.WriteString("\n🎂 *Birthdays:*\n")
		for _, celebrant := range birthdays {
			b.WriteString("• " + celebrant.Name)
			if years := celebrant.YearsSince(year); years > 0 {
				b.WriteString(fmt.Sprintf(" (%d years)", years))
			}
			b.WriteString(" - " + contactLabel(celebrant))
			b.WriteString("\n")
		}
	}

	if len(anniversaries) > 0 {
		b.WriteString("\n💍 *Wedding Anniversaries:*\n")
		for _, celebrant := range anniversaries {
			b.WriteString("• " + celebrant.Name)
			if celebrant.Spouse != "" {
				b.WriteString(" & " + celebrant.Spouse)
			}
			if years := celebrant.YearsSince(year); years > 0 {
				b.WriteString(fmt.Sprintf(" (%d years)", years))
			}
			b.WriteString(" - " + contactLabel(celebrant))
			b.WriteString("\n")
		}
	}

	b.WriteString("\nMay God bless you all abundantly! 🙏")
	if c.generator != nil {
		verse := c.generator.RandomVerse()
		b.WriteString(fmt.Sprintf("\n\n\"%s\" - %s", verse.Text, verse.Reference))
	}

	return b.String(), nil
}

func contactLabel(celebrant *entity.Celebrant) string {
	if celebrant.ContactHandle == "" {
		return "no contact"
	}
	return celebrant.ContactHandle
}

// buildSimpleListing is the degraded message used when the grouped build
// fails: a flat per-person listing that cannot itself fail.
func (c *Core) buildSimpleListing(celebrants []*entity.Celebrant) string {
	lines := make([]string, 0, len(celebrants)+1)
	lines = append(lines, "Today's celebrations:")
	for _, celebrant := range celebrants {
		lines = append(lines, fmt.Sprintf("• %s (%s)", celebrant.Name, celebrant.EventType))
	}
	return strings.Join(lines, "\n")
}
