package notifications

import (
	"context"
	"sync"
)

// MockPushSender records every batch and answers with ok tickets unless told otherwise
type MockPushSender struct {
	mu      sync.Mutex
	batches [][]Message

	// FailBatch maps a zero-based batch index to the error Send returns for it
	FailBatch map[int]error
	// TicketErrors maps a token to the error detail put on its ticket
	TicketErrors map[string]string
}

// NewMockPushSender creates a sender that accepts everything
func NewMockPushSender() *MockPushSender {
	return &MockPushSender{FailBatch: map[int]error{}, TicketErrors: map[string]string{}}
}

// Send records the batch and returns the configured outcome
func (m *MockPushSender) Send(ctx context.Context, messages []Message) ([]Ticket, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	index := len(m.batches)
	m.batches = append(m.batches, append([]Message(nil), messages...))
	if err := m.FailBatch[index]; err != nil {
		return nil, err
	}

	tickets := make([]Ticket, len(messages))
	for i, msg := range messages {
		if detail, ok := m.TicketErrors[msg.To]; ok {
			tickets[i] = Ticket{Status: TicketError, Message: "delivery failed", Details: &TicketDetails{Error: detail}}
			continue
		}
		tickets[i] = Ticket{Status: TicketOK, ID: "ticket-" + msg.To}
	}
	return tickets, nil
}

// Batches returns the recorded batches
func (m *MockPushSender) Batches() [][]Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([][]Message(nil), m.batches...)
}

// Recipients returns every addressed token, in send order
func (m *MockPushSender) Recipients() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []string
	for _, b := range m.batches {
		for _, msg := range b {
			out = append(out, msg.To)
		}
	}
	return out
}
