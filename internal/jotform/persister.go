package jotform

import (
	"context"
	"log/slog"

	"github.com/pioneerbroadband/leadtracker/internal/leads"
)

// Persister adapts the Jotform client to the store's persistence
// contract. The remote form is the system of record.
type Persister struct {
	client *Client
	logger *slog.Logger
}

// NewPersister wraps a client. The logger receives data-quality warnings
// from adaptation; they never fail a fetch.
func NewPersister(client *Client, logger *slog.Logger) *Persister {
	if logger == nil {
		logger = slog.Default()
	}
	return &Persister{client: client, logger: logger}
}

func (p *Persister) Fetch(ctx context.Context) ([]leads.Lead, error) {
	subs, err := p.client.ListSubmissions(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]leads.Lead, 0, len(subs))
	for _, sub := range subs {
		l, warnings := ToLead(sub)
		for _, w := range warnings {
			p.logger.Warn("data quality", "submission", sub.ID, "warning", w)
		}
		out = append(out, l)
	}
	return out, nil
}

func (p *Persister) Create(ctx context.Context, lead *leads.Lead) (string, error) {
	return p.client.CreateSubmission(ctx, ToFields(lead))
}

func (p *Persister) Update(ctx context.Context, id string, fields map[string]string) error {
	providerFields := map[string]string{}
	for name, value := range fields {
		if name == leads.FieldName {
			first, last := splitName(value)
			if fid, ok := FieldID(fieldNameFirst); ok {
				providerFields[fid] = first
			}
			if lid, ok := FieldID(fieldNameLast); ok {
				providerFields[lid] = last
			}
			continue
		}
		if fid, ok := FieldID(name); ok {
			providerFields[fid] = value
		}
	}
	return p.client.UpdateSubmission(ctx, id, providerFields)
}

func (p *Persister) Delete(ctx context.Context, id string) error {
	return p.client.DeleteSubmission(ctx, id)
}
