package mailer

import "context"

// FakeClient records sent messages for tests.
type FakeClient struct {
	Sent []Message
	// Err, when set, is returned for every send.
	Err error
}

func NewFakeClient() *FakeClient {
	return &FakeClient{}
}

func (c *FakeClient) Send(ctx context.Context, msg Message) error {
	if c.Err != nil {
		return c.Err
	}
	c.Sent = append(c.Sent, msg)
	return nil
}
