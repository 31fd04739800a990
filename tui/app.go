package tui

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"enipgo/objects"
)

// DeviceStatus summarizes one configured device for the dashboard's device
// list.
type DeviceStatus struct {
	Name      string
	Address   string
	Connected bool
	LastError string
}

// DataSource is the read surface the dashboard renders, matching
// cmd/warscan's poller state.
type DataSource interface {
	ListDevices() []DeviceStatus
	Identity(ctx context.Context, device string) (objects.IdentityObject, error)
}

// App is the single-screen device dashboard.
type App struct {
	app       *tview.Application
	list      *tview.List
	detail    *tview.TextView
	statusBar *tview.TextView

	source DataSource

	mu       sync.Mutex
	devices  []DeviceStatus
	stopChan chan struct{}
}

// NewApp creates a dashboard backed by source.
func NewApp(source DataSource) *App {
	a := &App{
		app:      tview.NewApplication(),
		source:   source,
		stopChan: make(chan struct{}),
	}
	a.setupUI()
	return a
}

func (a *App) setupUI() {
	a.list = tview.NewList().ShowSecondaryText(true)
	a.list.SetBorder(true).SetTitle(" Devices ")
	a.list.SetSelectedFunc(func(index int, name, addr string, shortcut rune) {
		a.showDetail(index)
	})

	a.detail = tview.NewTextView().SetDynamicColors(true).SetWrap(true)
	a.detail.SetBorder(true).SetTitle(" Detail ")

	a.statusBar = tview.NewTextView().SetDynamicColors(true)
	a.statusBar.SetText(" Tab: switch focus   Enter: detail   ?: help   Q: quit")

	flex := tview.NewFlex().
		AddItem(a.list, 0, 1, true).
		AddItem(a.detail, 0, 2, false)

	root := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(flex, 0, 1, true).
		AddItem(a.statusBar, 1, 0, false)

	root.SetInputCapture(a.handleGlobalKeys)
	a.app.SetRoot(root, true).SetFocus(a.list)

	a.refreshList()
}

func (a *App) handleGlobalKeys(event *tcell.EventKey) *tcell.EventKey {
	switch event.Rune() {
	case 'q', 'Q':
		a.Stop()
		return nil
	case '?':
		a.detail.SetText(HelpText)
		return nil
	}
	if event.Key() == tcell.KeyTab {
		if a.app.GetFocus() == a.list {
			a.app.SetFocus(a.detail)
		} else {
			a.app.SetFocus(a.list)
		}
		return nil
	}
	return event
}

func (a *App) refreshList() {
	devices := a.source.ListDevices()
	a.mu.Lock()
	a.devices = devices
	a.mu.Unlock()

	selected := a.list.GetCurrentItem()
	a.list.Clear()
	for _, d := range devices {
		indicator := StatusIndicatorDisconnected
		if d.Connected {
			indicator = StatusIndicatorConnected
		} else if d.LastError != "" {
			indicator = StatusIndicatorError
		}
		secondary := d.Address
		if d.LastError != "" {
			secondary = fmt.Sprintf("%s — %s", d.Address, d.LastError)
		}
		a.list.AddItem(fmt.Sprintf("%s %s", indicator, d.Name), secondary, 0, nil)
	}
	if selected >= 0 && selected < a.list.GetItemCount() {
		a.list.SetCurrentItem(selected)
	}
}

func (a *App) showDetail(index int) {
	a.mu.Lock()
	if index < 0 || index >= len(a.devices) {
		a.mu.Unlock()
		return
	}
	device := a.devices[index]
	a.mu.Unlock()

	a.detail.SetText(fmt.Sprintf("[yellow]%s[-]\n%s\n\nloading identity...", device.Name, device.Address))

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		identity, err := a.source.Identity(ctx, device.Name)
		a.app.QueueUpdateDraw(func() {
			if err != nil {
				a.detail.SetText(fmt.Sprintf("[yellow]%s[-]\n%s\n\n[red]%v[-]", device.Name, device.Address, err))
				return
			}
			a.detail.SetText(fmt.Sprintf("[yellow]%s[-]\n%s\n\n%s", device.Name, device.Address, identity.String()))
		})
	}()
}

// periodicRefresh polls the device list every interval until Stop is called.
func (a *App) periodicRefresh(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-a.stopChan:
			return
		case <-ticker.C:
			a.app.QueueUpdateDraw(a.refreshList)
		}
	}
}

// Run starts the dashboard's event loop and blocks until Stop is called.
func (a *App) Run() error {
	go a.periodicRefresh(2 * time.Second)
	return a.app.Run()
}

// Stop halts the dashboard.
func (a *App) Stop() {
	close(a.stopChan)
	a.app.Stop()
}
