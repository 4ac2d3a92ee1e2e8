package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/anchor/internal/anchor"
	"github.com/dmitrijs2005/anchor/internal/client/services"
	"github.com/dmitrijs2005/anchor/internal/common"
	"github.com/dmitrijs2005/anchor/internal/filex"
	"github.com/dmitrijs2005/anchor/internal/sigil"
)

const maxTraceSize = 256 << 10

var errCancelled = errors.New("cancelled")

// Create walks the creation wizard. Each step fills part of the draft; the
// final one saves the anchor.
func (a *App) Create(ctx context.Context) error {
	w, err := a.creation.NewWizard(ctx)
	if err != nil {
		return err
	}

	for !w.Completed() {
		step := w.Current()
		a.printf("\n[%d/%d] %s\n%s\n", w.Index()+1, w.Len(), step.Headline, step.Body)

		var err error
		switch step.Key {
		case "intention":
			err = a.askIntention(w.Draft)
		case "category":
			err = a.askCategory(w.Draft)
		case "sigil":
			a.printf("Letters kept: %s\n", sigil.Distill(w.Draft.IntentionText))
		case "reinforcement":
			err = a.askTrace(w.Draft)
		case "enhancement":
			a.chooseStyle(ctx, w.Draft)
		case "review":
			err = a.review(w.Draft)
		}
		if errors.Is(err, errCancelled) {
			a.println("Cancelled, nothing was saved.")
			return nil
		}
		if err != nil {
			return err
		}

		if _, err := w.Continue(); err != nil {
			return err
		}
	}

	a.printf("Saved %s. Charge it with 'charge %s'.\n", shortID(w.Saved.ID), shortID(w.Saved.ID))
	a.pushQuietly(ctx)
	return nil
}

func (a *App) askIntention(d *services.Draft) error {
	for {
		text, err := GetSimpleText(a.reader, "Intention (empty to cancel)", a.out)
		if err != nil {
			return err
		}
		if text == "" {
			return errCancelled
		}
		err = a.creation.SetIntention(d, text)
		if errors.Is(err, common.ErrorValidation) {
			a.println(err)
			continue
		}
		return err
	}
}

func (a *App) askCategory(d *services.Draft) error {
	cats := anchor.Categories()
	labels := make([]string, 0, len(cats)+1)
	for _, c := range cats {
		labels = append(labels, c.Label())
	}
	labels = append(labels, anchor.CustomLabel)

	i, err := GetChoice(a.reader, "Category (empty to cancel)", labels, a.out)
	if err != nil {
		return err
	}
	switch {
	case i < 0:
		return errCancelled
	case i < len(cats):
		return a.creation.SetCategory(d, cats[i])
	}

	name, err := GetSimpleText(a.reader, "Name your category", a.out)
	if err != nil {
		return err
	}
	return a.creation.SetCategory(d, anchor.Category(name))
}

func (a *App) askTrace(d *services.Draft) error {
	path, err := GetSimpleText(a.reader, "Path to your traced SVG (empty to skip)", a.out)
	if err != nil || path == "" {
		return err
	}
	data, err := filex.ReadLimited(path, maxTraceSize)
	if err != nil {
		a.printf("Skipping the trace: %v\n", err)
		return nil
	}
	d.ReinforcedSigilSVG = string(data)
	return nil
}

func (a *App) review(d *services.Draft) error {
	a.printf("Intention: %s\nCategory:  %s\n", d.IntentionText, d.Category.Label())
	a.printf("Traced:    %v\nStyle:     %s\n", d.ReinforcedSigilSVG != "", valueOr(d.Style, "none"))

	ok, err := Confirm(a.reader, "Save this anchor?", a.out)
	if err != nil {
		return err
	}
	if !ok {
		return errCancelled
	}
	return nil
}

func valueOr(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

// Order places a print of an anchor. Orders are not queued, so this needs
// the server.
func (a *App) Order(ctx context.Context, ref string) error {
	x, err := a.resolve(ctx, ref)
	if err != nil {
		return err
	}

	products := []anchor.Product{anchor.ProductPrint, anchor.ProductPoster, anchor.ProductPendant}
	names := make([]string, len(products))
	for i, p := range products {
		names[i] = string(p)
	}
	i, err := GetChoice(a.reader, "Product (empty to cancel)", names, a.out)
	if err != nil || i < 0 {
		return err
	}

	o := anchor.Order{AnchorID: x.ID, Product: products[i], Quantity: 1}
	fields := []struct {
		prompt string
		dst    *string
	}{
		{"Size", &o.Size},
		{"Full name", &o.Shipping.Name},
		{"Address", &o.Shipping.Line1},
		{"Address line 2 (optional)", &o.Shipping.Line2},
		{"City", &o.Shipping.City},
		{"Postal code", &o.Shipping.PostalCode},
		{"Country", &o.Shipping.Country},
	}
	for _, f := range fields {
		if *f.dst, err = GetSimpleText(a.reader, f.prompt, a.out); err != nil {
			return err
		}
	}
	qty, err := GetSimpleText(a.reader, "Quantity [1]", a.out)
	if err != nil {
		return err
	}
	if qty != "" {
		if _, err := fmt.Sscanf(qty, "%d", &o.Quantity); err != nil {
			return fmt.Errorf("%w: quantity must be a number", common.ErrorValidation)
		}
	}

	placed, err := a.orders.Place(ctx, o)
	if err != nil {
		return err
	}
	a.printf("Order %s is %s.\n", placed.ID, placed.Status)
	return nil
}
