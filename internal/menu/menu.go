// ABOUTME: Restaurant menu plugin exposing fixed specials and prices as agent tools
// ABOUTME: Both functions are pure and deterministic; the agent service decides when to call them
package menu

import (
	"context"

	"github.com/harper/menu-agent/internal/tools"
)

// Tool names as registered on the agent
const (
	ToolGetSpecials  = "get_specials"
	ToolGetItemPrice = "get_item_price"
)

// Specials is the fixed specials listing returned by get_specials
const Specials = `
Special Soup: Clam Chowder
Special Salad: Cobb Salad
Special Drink: Chai Tea
`

// ItemPrice is the price quoted for every menu item
const ItemPrice = "$9.99"

// PriceArgs are the arguments for get_item_price
type PriceArgs struct {
	MenuItem string `json:"menu_item" jsonschema_description:"The name of the menu item."`
}

// Plugin is the demo menu plugin
type Plugin struct{}

// NewPlugin creates the menu plugin
func NewPlugin() *Plugin {
	return &Plugin{}
}

// GetSpecials provides a list of specials from the menu
func (p *Plugin) GetSpecials() string {
	return Specials
}

// GetItemPrice provides the price of the requested menu item
func (p *Plugin) GetItemPrice(menuItem string) string {
	return ItemPrice
}

// Tools returns the plugin functions as agent tools
func (p *Plugin) Tools() []tools.Tool {
	return []tools.Tool{
		tools.NewFunc(ToolGetSpecials, "Provides a list of specials from the menu.",
			func(ctx context.Context, _ tools.NoArgs) (string, error) {
				return p.GetSpecials(), nil
			}),
		tools.NewFunc(ToolGetItemPrice, "Provides the price of the requested menu item.",
			func(ctx context.Context, args PriceArgs) (string, error) {
				return p.GetItemPrice(args.MenuItem), nil
			}),
	}
}
