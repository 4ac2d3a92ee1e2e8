package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/anchor/internal/anchor"
	"github.com/dmitrijs2005/anchor/internal/client/services"
	"github.com/dmitrijs2005/anchor/internal/common"
	"github.com/dmitrijs2005/anchor/internal/filex"
)

const (
	shortIDLen = 8
	exportDir  = "exports"
)

func shortID(id string) string {
	if len(id) > shortIDLen {
		return id[:shortIDLen]
	}
	return id
}

// resolve finds a stored anchor by its id or a unique id prefix.
func (a *App) resolve(ctx context.Context, ref string) (*anchor.Anchor, error) {
	list, err := a.vault.List(ctx)
	if err != nil {
		return nil, err
	}
	var found []*anchor.Anchor
	for _, x := range list {
		if x.ID == ref {
			return x, nil
		}
		if strings.HasPrefix(x.ID, ref) {
			found = append(found, x)
		}
	}
	switch len(found) {
	case 0:
		return nil, fmt.Errorf("anchor %q: %w", ref, common.ErrorNotFound)
	case 1:
		return found[0], nil
	}
	return nil, fmt.Errorf("%w: %q matches %d anchors", common.ErrorValidation, ref, len(found))
}

func formatTime(t *time.Time) string {
	if t == nil {
		return "never"
	}
	return t.Local().Format("2006-01-02 15:04")
}

// Vault lists the anchors that have not been burned.
func (a *App) Vault(ctx context.Context) error {
	list, err := a.vault.List(ctx)
	if err != nil {
		return err
	}
	if len(list) == 0 {
		a.println("Your vault is empty. Type 'create' to make your first anchor.")
		return nil
	}
	for _, x := range list {
		charged := " "
		if x.IsCharged {
			charged = "⚡"
		}
		a.printf("%s %s  %-15s  %3d×  %s\n", shortID(x.ID), charged, x.Category.Label(), x.ActivationCount, x.IntentionText)
	}
	return nil
}

func (a *App) Show(ctx context.Context, ref string) error {
	x, err := a.resolve(ctx, ref)
	if err != nil {
		return err
	}

	a.printf("ID:           %s\n", x.ID)
	a.printf("Intention:    %s\n", x.IntentionText)
	a.printf("Category:     %s\n", x.Category.Label())
	a.printf("Charged:      %v (%s)\n", x.IsCharged, formatTime(x.ChargedAt))
	a.printf("Activations:  %d (last %s)\n", x.ActivationCount, formatTime(x.LastActivatedAt))
	a.printf("Reinforced:   %v\n", x.ReinforcedSigilSVG != nil)
	a.printf("Enhanced:     %v\n", x.EnhancedImageURL != nil)
	a.printf("Created:      %s\n", formatTime(&x.CreatedAt))

	history, err := a.vault.History(ctx, x.ID)
	if err != nil {
		return err
	}
	if len(history) > 0 {
		a.println("Sessions:")
		for _, e := range history {
			a.printf("  %s  %-10s %-6s %ds\n", formatTime(&e.CompletedAt), e.Type, e.Mode, e.DurationSeconds)
		}
	}
	return nil
}

func (a *App) Burn(ctx context.Context, ref string) error {
	x, err := a.resolve(ctx, ref)
	if err != nil {
		return err
	}
	ok, err := Confirm(a.reader, fmt.Sprintf("Burn %q? This releases the anchor for good.", x.IntentionText), a.out)
	if err != nil || !ok {
		return err
	}
	if err := a.vault.Burn(ctx, x.ID); err != nil {
		return err
	}
	a.println("Burned. Let it go.")
	a.pushQuietly(ctx)
	return nil
}

// Export writes the anchor's sigil to exports/<id>.svg.
func (a *App) Export(ctx context.Context, ref string) error {
	x, err := a.resolve(ctx, ref)
	if err != nil {
		return err
	}
	path, err := filex.WriteExport(exportDir, x.ID+".svg", []byte(x.DisplaySigil()))
	if err != nil {
		return err
	}
	a.printf("Saved %s\n", path)
	return nil
}

// Enhance offers styled variations of an existing anchor's sigil.
func (a *App) Enhance(ctx context.Context, ref string) error {
	x, err := a.resolve(ctx, ref)
	if err != nil {
		return err
	}
	d := &services.Draft{
		IntentionText: x.IntentionText,
		Category:      x.Category,
		BaseSigilSVG:  x.BaseSigilSVG,
	}
	if x.ReinforcedSigilSVG != nil {
		d.ReinforcedSigilSVG = *x.ReinforcedSigilSVG
	}

	if !a.chooseStyle(ctx, d) {
		return nil
	}
	if err := a.vault.SetEnhancedImage(ctx, x.ID, d.EnhancedImageURL); err != nil {
		return err
	}
	a.printf("Applied the %s style.\n", d.Style)
	a.pushQuietly(ctx)
	return nil
}

// chooseStyle runs the analysis and lets the user pick a variation. It
// reports whether one was picked.
func (a *App) chooseStyle(ctx context.Context, d *services.Draft) bool {
	a.println("Analyzing your intention...")
	an, err := a.creation.Analyze(ctx, d)
	if err != nil {
		a.printf("Analysis failed: %v\n", err)
		return false
	}
	a.printf("Themes: %s\n", strings.Join(an.Themes, ", "))
	a.printf("Suggested symbols: %s\n", strings.Join(an.SuggestedSymbols, ", "))

	i, err := GetChoice(a.reader, "Style (empty to skip)", an.RecommendedStyles, a.out)
	if err != nil || i < 0 {
		return false
	}

	vs, err := a.creation.Variations(ctx, d, an.RecommendedStyles[i])
	if err != nil {
		a.printf("Could not generate variations: %v\n", err)
		return false
	}
	names := make([]string, len(vs))
	for k, v := range vs {
		names[k] = v.Style
	}
	k, err := GetChoice(a.reader, "Variation (empty to skip)", names, a.out)
	if err != nil || k < 0 {
		return false
	}
	a.creation.ChooseVariation(d, vs[k])
	return true
}

// pushQuietly tries to sync when online and keeps failures in the log.
func (a *App) pushQuietly(ctx context.Context) {
	if a.Mode() != ModeOnline {
		return
	}
	if _, err := a.syncer.Flush(ctx); err != nil {
		a.logger.Warn(ctx, "sync failed", "error", err)
	}
}
