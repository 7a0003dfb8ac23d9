package usecase

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/riskibarqy/sports-ticker/internal/domain/alert"
	"github.com/riskibarqy/sports-ticker/internal/domain/team"
	usecasemock "github.com/riskibarqy/sports-ticker/internal/mocks/usecase"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type kindRenderer struct{}

func (kindRenderer) Render(item alert.Notification, tracked team.Team) string {
	return string(item.Kind) + "|" + tracked.Emoji
}

type recordingNotifier struct {
	name string
	mu   sync.Mutex
	got  []string
	fail map[string]bool
}

func (n *recordingNotifier) Name() string { return n.name }

func (n *recordingNotifier) Send(_ context.Context, text string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.fail[text] {
		return errors.New("rejected")
	}
	n.got = append(n.got, text)
	return nil
}

func TestDeliveryService_Deliver_KeepsOrderPerNotifier(t *testing.T) {
	t.Parallel()

	first := &recordingNotifier{name: "stdout"}
	second := &recordingNotifier{name: "telegram", fail: map[string]bool{"GOAL|🔴": true}}
	service := NewDeliveryService(kindRenderer{}, []Notifier{first, nil, second}, nil)

	items := []alert.Notification{
		{Kind: alert.KindKickoff, MatchID: "401", TeamID: "arsenal"},
		{Kind: alert.KindGoal, MatchID: "401", TeamID: "arsenal"},
		{Kind: alert.KindFulltime, MatchID: "401", TeamID: "arsenal"},
	}
	report := service.Deliver(context.Background(), items, []team.Team{{ID: "arsenal", Emoji: "🔴"}})

	require.Equal(t, []string{"KICKOFF|🔴", "GOAL|🔴", "FULLTIME|🔴"}, first.got)
	require.Equal(t, []string{"KICKOFF|🔴", "FULLTIME|🔴"}, second.got)
	require.Equal(t, 3, report.Messages)
	require.Equal(t, 6, report.Attempted)
	require.Equal(t, 5, report.Delivered)
	require.Equal(t, 1, report.Failed)
	require.Len(t, report.Errors, 1)
	require.Equal(t, "telegram", report.Errors[0].Notifier)
	require.Equal(t, alert.KindGoal, report.Errors[0].Kind)
	require.Equal(t, []string{"stdout", "telegram"}, service.NotifierNames())
}

func TestDeliveryService_Deliver_NoNotifications(t *testing.T) {
	t.Parallel()

	notifier := usecasemock.NewNotifier(t)
	service := NewDeliveryService(kindRenderer{}, []Notifier{notifier}, nil)

	report := service.Deliver(context.Background(), nil, nil)
	require.Zero(t, report.Attempted)
	notifier.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
}

func TestDeliveryService_SendText(t *testing.T) {
	t.Parallel()

	ok := usecasemock.NewNotifier(t)
	broken := usecasemock.NewNotifier(t)
	ok.On("Send", mock.Anything, "Upcoming matches").Return(nil).Once()
	broken.On("Send", mock.Anything, "Upcoming matches").Return(errors.New("401 unauthorized")).Once()
	broken.On("Name").Return("discord")

	service := NewDeliveryService(kindRenderer{}, []Notifier{ok, broken}, nil)
	err := service.SendText(context.Background(), "  Upcoming matches ")
	require.Error(t, err)
	require.True(t, strings.Contains(err.Error(), "discord"))

	require.ErrorIs(t, service.SendText(context.Background(), " "), ErrInvalidInput)
}
