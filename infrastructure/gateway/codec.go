package gateway

import (
	"artist-hub/domain"
	"fmt"
	"time"

	"github.com/tidwall/gjson"
)

// participantFilter selects messages sent or received by user.
func participantFilter(user domain.UserID) map[string]any {
	return map[string]any{
		"or": []any{
			map[string]any{"senderId": map[string]any{"eq": user}},
			map[string]any{"receiverId": map[string]any{"eq": user}},
		},
	}
}

func messageFilterVariables(filter domain.MessageFilter) map[string]any {
	clauses := []any{participantFilter(filter.Participant)}
	if filter.Counterparty != nil {
		clauses = append(clauses, participantFilter(*filter.Counterparty))
	}
	if filter.Before != nil {
		clauses = append(clauses, map[string]any{
			"timestamp": map[string]any{"le": formatTime(*filter.Before)},
		})
	}

	variables := map[string]any{"filter": clauses[0]}
	if len(clauses) > 1 {
		variables["filter"] = map[string]any{"and": clauses}
	}
	if filter.Limit > 0 {
		variables["limit"] = filter.Limit
	}
	return variables
}

func parseMessage(r gjson.Result) (domain.Message, error) {
	timestamp, err := parseTime(r.Get("timestamp").String())
	if err != nil {
		return domain.Message{}, fmt.Errorf("message %s: %w", r.Get("id").String(), err)
	}
	return domain.Message{
		ID:         r.Get("id").String(),
		SenderID:   domain.UserID(r.Get("senderId").String()),
		ReceiverID: domain.UserID(r.Get("receiverId").String()),
		Body:       r.Get("messageBody").String(),
		Timestamp:  timestamp,
		Sender: domain.SenderInfo{
			Username:       r.Get("sender.username").String(),
			ProfilePicture: r.Get("sender.profilePicture").String(),
		},
	}, nil
}

// parseProject reads a project record. Fields missing from a mutation
// selection set are left zero.
func parseProject(r gjson.Result) (domain.Project, error) {
	project := domain.Project{
		ID:          r.Get("id").String(),
		Name:        r.Get("name").String(),
		Description: r.Get("description").String(),
		Status:      domain.ProjectStatus(r.Get("status").String()),
		ServiceType: domain.ServiceType(r.Get("serviceType").String()),
	}
	var err error
	if project.Timeline, err = parseTimeline(r.Get("timeline")); err != nil {
		return domain.Project{}, fmt.Errorf("project %s: %w", project.ID, err)
	}
	if project.Messages, err = parseThread(r.Get("messages")); err != nil {
		return domain.Project{}, fmt.Errorf("project %s: %w", project.ID, err)
	}
	return project, nil
}

func parseTimeline(r gjson.Result) (domain.Timeline, error) {
	var timeline domain.Timeline
	var err error
	if created := r.Get("created"); created.Exists() && created.Type != gjson.Null {
		if timeline.Created, err = parseTime(created.String()); err != nil {
			return domain.Timeline{}, err
		}
	}
	if updated := r.Get("updated"); updated.Exists() && updated.Type != gjson.Null {
		if timeline.Updated, err = parseTime(updated.String()); err != nil {
			return domain.Timeline{}, err
		}
	}
	if deadline := r.Get("deadline"); deadline.Exists() && deadline.Type != gjson.Null {
		at, err := parseTime(deadline.String())
		if err != nil {
			return domain.Timeline{}, err
		}
		timeline.Deadline = &at
	}
	return timeline, nil
}

func parseThread(r gjson.Result) ([]domain.ProjectMessage, error) {
	if !r.Exists() || r.Type == gjson.Null {
		return nil, nil
	}
	thread := make([]domain.ProjectMessage, 0, len(r.Array()))
	for _, item := range r.Array() {
		timestamp, err := parseTime(item.Get("timestamp").String())
		if err != nil {
			return nil, err
		}
		thread = append(thread, domain.ProjectMessage{
			ID:        item.Get("id").String(),
			Sender:    item.Get("sender").String(),
			Content:   item.Get("content").String(),
			Timestamp: timestamp,
		})
	}
	return thread, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(value string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp %q: %w", value, err)
	}
	return t.UTC(), nil
}
