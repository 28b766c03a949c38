package ui

import (
	"errors"
	"fmt"
	"time"

	"github.com/vovakirdan/tui-handheld/internal/core"
	"github.com/vovakirdan/tui-handheld/internal/progress"
)

// Player is the chat author of messages the player character says.
const Player = "Mario"

// Item is one article of a shop.
type Item struct {
	Name  string `yaml:"name"`
	Price uint32 `yaml:"price"`
}

type owner int

const (
	ownerNone owner = iota
	ownerScript
	ownerShop
)

// UI is every overlay of the console. It is the dialog host of the script
// runner.
type UI struct {
	Dialog    Dialog
	Inventory Inventory
	Chat      Chat

	// OnBuy is called after a shop purchase.
	OnBuy func(item string)
	// OnUse is called when an inventory item is used.
	OnUse func(item string)

	state *progress.State
	owner owner
	shop  []Item
	now   func() time.Time
}

// New creates the overlays for a progress state.
func New(state *progress.State) *UI {
	return &UI{state: state, now: time.Now}
}

// SetClock replaces time.Now, for tests.
func (u *UI) SetClock(now func() time.Time) {
	u.now = now
}

// SetState points the overlays at another progress state after a reload.
func (u *UI) SetState(state *progress.State) {
	u.state = state
}

// OpenDialog opens a prompt for the script runner.
func (u *UI) OpenDialog(title string, answers []string) {
	u.owner = ownerScript
	u.shop = nil
	u.Dialog.Open(title, answers)
}

// DialogChoice reports the answer picked in a script prompt.
func (u *UI) DialogChoice() (int, bool) {
	if u.owner != ownerScript {
		return 0, false
	}
	return u.Dialog.Choice()
}

// OpenShop lists items with their prices and an Exit entry.
func (u *UI) OpenShop(title string, items []Item) {
	answers := make([]string, 0, len(items)+1)
	for _, it := range items {
		answers = append(answers, fmt.Sprintf("%s (%d$)", it.Name, it.Price))
	}
	answers = append(answers, "Exit")
	u.owner = ownerShop
	u.shop = items
	u.Dialog.Open(title, answers)
}

// Message adds a chat line.
func (u *UI) Message(author, text string) {
	u.Chat.Send(author, text, u.now())
}

// Blocking reports whether an overlay takes the input away from the game.
func (u *UI) Blocking() bool {
	return u.Dialog.Active() || u.Inventory.Open()
}

// Update feeds input to the topmost overlay and settles finished shop
// dialogs.
func (u *UI) Update(in *core.Input) {
	switch {
	case u.Dialog.Active():
		u.Dialog.Update(in)
	case u.Inventory.Open():
		if in.Y.Pressed {
			in.Y.Consume()
			u.Inventory.Toggle()
			break
		}
		u.Inventory.Update(in, u.state, u.OnUse)
	case in.Y.Pressed:
		in.Y.Consume()
		u.Inventory.Toggle()
	}

	if u.owner == ownerShop {
		if choice, ok := u.Dialog.Choice(); ok {
			u.settleShop(choice)
		}
	}
}

func (u *UI) settleShop(choice int) {
	items := u.shop
	u.owner = ownerNone
	u.shop = nil
	if choice < 0 || choice >= len(items) {
		return
	}
	item := items[choice]
	err := u.state.Buy(item.Name, item.Price)
	if errors.Is(err, progress.ErrInsufficientFunds) {
		u.Message(Player, "I'm moneyless!")
		return
	}
	if err == nil && u.OnBuy != nil {
		u.OnBuy(item.Name)
	}
}

// Draw renders the overlays and the chat.
func (u *UI) Draw(dst *core.Screen) {
	u.Dialog.Draw(dst)
	if !u.Dialog.Active() {
		u.Inventory.Draw(dst, u.state)
	}
	u.Chat.Draw(dst, u.now())
}
