package dashboard

import (
	"errors"
	"fmt"

	"golang.org/x/net/html"
)

// Tab markup classes.
const (
	TabPanelClass  = "tab-content"
	TabButtonClass = "tab-btn"
	ActiveClass    = "active"
	// TabTargetAttr names the panel a tab button shows.
	TabTargetAttr = "data-tab"
)

// ErrUnknownTab is returned when a tab switch names no tab panel.
var ErrUnknownTab = errors.New("unknown tab")

// TabController toggles which panel and button carry the active marker.
type TabController struct{}

// NewTabController creates a TabController.
func NewTabController() *TabController {
	return &TabController{}
}

// Switch deactivates every panel and button, then activates the panel with
// id panelID and the trigger element that requested it. An unknown panel or
// a nil trigger is rejected before anything changes.
func (c *TabController) Switch(doc *Document, panelID string, trigger *html.Node) error {
	if trigger == nil {
		return errors.New("tab switch requires a trigger element")
	}
	panel, err := doc.ElementByID(panelID)
	if err != nil {
		return fmt.Errorf("%w %q: %w", ErrUnknownTab, panelID, err)
	}
	if !HasClass(panel, TabPanelClass) {
		return fmt.Errorf("%w: #%s is not a tab panel", ErrUnknownTab, panelID)
	}

	for _, n := range doc.ElementsByClass(TabPanelClass) {
		RemoveClass(n, ActiveClass)
	}
	for _, n := range doc.ElementsByClass(TabButtonClass) {
		RemoveClass(n, ActiveClass)
	}

	AddClass(panel, ActiveClass)
	AddClass(trigger, ActiveClass)
	return nil
}

// ButtonFor returns the tab button targeting panelID.
func (c *TabController) ButtonFor(doc *Document, panelID string) (*html.Node, error) {
	for _, n := range doc.ElementsByClass(TabButtonClass) {
		if Attr(n, TabTargetAttr) == panelID {
			return n, nil
		}
	}
	return nil, fmt.Errorf("%w: tab button for %s", ErrElementNotFound, panelID)
}

// Activate switches to panelID using its own tab button as the trigger.
func (c *TabController) Activate(doc *Document, panelID string) error {
	button, err := c.ButtonFor(doc, panelID)
	if err != nil {
		return fmt.Errorf("%w %q: %w", ErrUnknownTab, panelID, err)
	}
	return c.Switch(doc, panelID, button)
}

// Panels returns the ids of every tab panel in document order.
func (c *TabController) Panels(doc *Document) []string {
	var out []string
	for _, n := range doc.ElementsByClass(TabPanelClass) {
		out = append(out, Attr(n, "id"))
	}
	return out
}

// Active returns the id of the first active panel, or "".
func (c *TabController) Active(doc *Document) string {
	for _, n := range doc.ElementsByClass(TabPanelClass) {
		if HasClass(n, ActiveClass) {
			return Attr(n, "id")
		}
	}
	return ""
}
