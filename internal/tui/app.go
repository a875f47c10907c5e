package tui

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/matheus3301/smsdash/internal/client"
	"github.com/matheus3301/smsdash/internal/tui/keys"
	"github.com/matheus3301/smsdash/internal/tui/model"
	"github.com/matheus3301/smsdash/internal/tui/ui"
	"github.com/matheus3301/smsdash/internal/tui/views"
	"github.com/rivo/tview"
	"golang.org/x/sync/errgroup"
)

// RefreshInterval is how often the dashboard polls the gateway.
const RefreshInterval = 5 * time.Second

const (
	pageConversations = "conversations"
	pageThread        = "thread"
	pageDetails       = "details"
	pageHelp          = "help"
)

// App is the main TUI application shell.
type App struct {
	app        *tview.Application
	theme      *ui.Theme
	layout     *tview.Flex
	pages      *ui.Pages
	vm         *model.ViewModel
	registry   *keys.Registry
	info       *ui.ProfileInfo
	menu       *ui.Menu
	crumbs     *ui.Crumbs
	prompt     *ui.Prompt
	statusBar  *views.StatusBar
	list       *views.ConversationList
	thread     *views.MessageThread
	details    *views.ConversationInfo
	help       *views.HelpView
	components map[string]ui.Component

	profile    string
	gateway    string
	refreshing atomic.Bool

	ctx    context.Context
	cancel context.CancelFunc
}

// NewApp creates the dashboard for the gateway g serving profileName at
// gatewayURL.
func NewApp(g model.Gateway, profileName, gatewayURL string) *App {
	ctx, cancel := context.WithCancel(context.Background())
	theme := ui.DefaultTheme()

	a := &App{
		app:       tview.NewApplication(),
		theme:     theme,
		pages:     ui.NewPages(),
		vm:        model.NewViewModel(g),
		registry:  keys.NewRegistry(),
		info:      ui.NewProfileInfo(theme),
		menu:      ui.NewMenu(theme),
		crumbs:    ui.NewCrumbs(theme),
		prompt:    ui.NewPrompt(theme),
		statusBar: views.NewStatusBar(theme),
		list:      views.NewConversationList(theme),
		thread:    views.NewMessageThread(theme),
		details:   views.NewConversationInfo(theme),
		help:      views.NewHelpView(theme),
		profile:   profileName,
		gateway:   gatewayURL,
		ctx:       ctx,
		cancel:    cancel,
	}
	a.components = map[string]ui.Component{
		pageConversations: a.list,
		pageThread:        a.thread,
		pageDetails:       a.details,
		pageHelp:          a.help,
	}

	a.statusBar.SetProfile(profileName)
	a.setupBindings()
	a.setupCallbacks()
	a.setupLayout()

	return a
}

func (a *App) setupBindings() {
	a.registry.AddGlobal(&keys.Action{
		Key: tcell.KeyRune, Rune: ':',
		Description: "Command", Visible: true,
		Handler: func() { a.showPrompt(ui.PromptCommand, "") },
	})
	a.registry.AddGlobal(&keys.Action{
		Key: tcell.KeyRune, Rune: 'r',
		Description: "Refresh", Visible: true,
		Handler: func() { go a.reload() },
	})
	a.registry.AddGlobal(&keys.Action{
		Key: tcell.KeyRune, Rune: '?',
		Description: "Help", Visible: true,
		Handler: func() { a.push(pageHelp) },
	})
	a.registry.AddGlobal(&keys.Action{
		Key: tcell.KeyRune, Rune: 'q',
		Description: "Quit", Visible: true,
		Handler: a.Stop,
	})

	a.registry.AddView(pageConversations, &keys.Action{
		Key: tcell.KeyRune, Rune: '/',
		Description: "Filter", Visible: true,
		Handler: func() { a.showPrompt(ui.PromptFilter, "") },
	})
	a.registry.AddView(pageConversations, &keys.Action{
		Key: tcell.KeyRune, Rune: '0',
		Handler: func() { a.list.ClearFilter() },
	})
	for n := 1; n <= 9; n++ {
		a.registry.AddView(pageConversations, &keys.Action{
			Key: tcell.KeyRune, Rune: rune('0' + n),
			Handler: func() {
				if phone := a.list.PhoneByIndex(n); phone != "" {
					a.openConversation(phone)
				}
			},
		})
	}

	a.registry.AddView(pageThread, &keys.Action{
		Key: tcell.KeyRune, Rune: 'i',
		Description: "Compose", Visible: true,
		Handler: func() { a.app.SetFocus(a.thread.Composer()) },
	})
	a.registry.AddView(pageThread, &keys.Action{
		Key: tcell.KeyRune, Rune: 'd',
		Description: "Details", Visible: true,
		Handler: a.showDetails,
	})
	saveContact := &keys.Action{
		Key: tcell.KeyRune, Rune: 'a',
		Description: "Save contact", Visible: true,
		Handler: a.askSaveContact,
	}
	a.registry.AddView(pageThread, saveContact)
	a.registry.AddView(pageDetails, saveContact)
}

func (a *App) setupCallbacks() {
	a.list.SetSelectedFunc(func(row, _ int) {
		if phone := a.list.PhoneByIndex(row); phone != "" {
			a.openConversation(phone)
		}
	})

	a.thread.SetOnSend(func(text string) {
		go func() {
			if err := a.vm.SendSMS(a.ctx, text); err != nil {
				a.vm.Flash.Err("Send failed", err)
				a.app.QueueUpdateDraw(a.render)
				return
			}
			a.reload()
		}()
	})

	a.prompt.SetOnSubmit(func(mode ui.PromptMode, text string) {
		a.hidePrompt()
		switch mode {
		case ui.PromptCommand:
			a.runCommand(ParseCommand(text))
		case ui.PromptFilter:
			a.list.SetFilter(text)
		case ui.PromptSaveContact:
			a.saveContact(text)
		}
	})
	a.prompt.SetOnCancel(a.hidePrompt)

	a.pages.SetOnChange(func(stack []string) {
		names := make([]string, len(stack))
		for i, page := range stack {
			names[i] = a.components[page].Name()
		}
		a.crumbs.Update(names)
		a.updateMenu()
	})
}

func (a *App) setupLayout() {
	a.pages.AddPage(pageConversations, a.list, true, false)
	a.pages.AddPage(pageThread, a.thread, true, false)
	a.pages.AddPage(pageDetails, a.details, true, false)
	a.pages.AddPage(pageHelp, a.help, true, false)

	header := tview.NewFlex().
		SetDirection(tview.FlexColumn).
		AddItem(a.info, 44, 0, false).
		AddItem(a.menu, 0, 1, false).
		AddItem(ui.NewLogo(a.theme), 12, 0, false)

	a.layout = tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(header, 5, 0, false).
		AddItem(a.crumbs, 1, 0, false).
		AddItem(a.prompt, 0, 0, false).
		AddItem(a.pages, 0, 1, true).
		AddItem(a.statusBar, 1, 0, false)

	a.app.SetRoot(a.layout, true)
	a.pages.Reset(pageConversations)
	a.app.SetFocus(a.list)

	a.app.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		if input, ok := a.app.GetFocus().(*tview.InputField); ok {
			if input == a.thread.Composer() && event.Key() == tcell.KeyEscape {
				a.app.SetFocus(a.thread.Messages())
				return nil
			}
			return event
		}

		if event.Key() == tcell.KeyEscape {
			a.back()
			return nil
		}

		if a.registry.HandleEvent(a.pages.Current(), event) {
			return nil
		}
		return event
	})
}

func (a *App) updateMenu() {
	page := a.pages.Current()
	var hints []ui.MenuHint
	if c, ok := a.components[page]; ok {
		hints = append(hints, c.Hints()...)
	}
	a.menu.Update(append(hints, a.registry.Hints(page)...))
}

func (a *App) focusCurrent() {
	switch a.pages.Current() {
	case pageThread:
		a.app.SetFocus(a.thread.Messages())
	case pageDetails:
		a.app.SetFocus(a.details)
	case pageHelp:
		a.app.SetFocus(a.help)
	default:
		a.app.SetFocus(a.list)
	}
}

func (a *App) push(page string) {
	a.pages.Push(page)
	a.focusCurrent()
}

func (a *App) back() {
	if a.pages.Pop() == pageThread {
		a.vm.Select("")
	}
	a.focusCurrent()
}

func (a *App) showPrompt(mode ui.PromptMode, title string) {
	a.prompt.Activate(mode)
	if title != "" {
		a.prompt.SetTitle(title)
	}
	a.layout.ResizeItem(a.prompt, 3, 0)
	a.app.SetFocus(a.prompt.InputField)
}

func (a *App) hidePrompt() {
	a.layout.ResizeItem(a.prompt, 0, 0)
	a.focusCurrent()
}

func (a *App) openConversation(phone string) {
	a.vm.Select(phone)
	conv, _ := a.vm.Selected()
	a.thread.Update(conv)
	if a.pages.Current() == pageDetails {
		a.pages.Pop()
	}
	a.push(pageThread)
}

func (a *App) showDetails() {
	conv, ok := a.vm.Selected()
	if !ok {
		return
	}
	a.details.Update(conv)
	a.push(pageDetails)
}

func (a *App) askSaveContact() {
	conv, ok := a.vm.Selected()
	switch {
	case !ok:
		a.vm.Flash.Warn("Open a conversation first")
	case conv.IsRegistered:
		a.vm.Flash.Warn(conv.DisplayName() + " is already saved")
	default:
		a.showPrompt(ui.PromptSaveContact, " Save "+conv.Phone+" as ")
		return
	}
	a.statusBar.SetFlash(a.vm.Flash.Get())
}

func (a *App) saveContact(name string) {
	go func() {
		err := a.vm.SaveContact(a.ctx, name)
		switch {
		case err == nil:
		case errors.Is(err, model.ErrAlreadyRegistered), client.IsConflict(err):
			a.vm.Flash.Warn("Number is already saved")
		default:
			a.vm.Flash.Err("Save failed", err)
		}
		a.reload()
	}()
}

func (a *App) runCommand(cmd Command) {
	switch cmd.Name {
	case CmdSave:
		if cmd.Args == "" {
			a.askSaveContact()
			return
		}
		a.saveContact(cmd.Args)
	case CmdOpen:
		if cmd.Args == "" {
			a.vm.Flash.Warn("usage: :open <phone>")
			break
		}
		a.openConversation(cmd.Args)
	case CmdRefresh:
		go a.reload()
	case CmdHelp:
		a.push(pageHelp)
	case CmdQuit:
		a.Stop()
		return
	default:
		a.vm.Flash.Warn("unknown command: " + cmd.Name)
	}
	a.statusBar.SetFlash(a.vm.Flash.Get())
}

// reload polls the gateway and redraws. Overlapping calls are dropped.
func (a *App) reload() {
	if !a.refreshing.CompareAndSwap(false, true) {
		return
	}
	defer a.refreshing.Store(false)

	a.app.QueueUpdateDraw(func() { a.statusBar.SetLoading(true) })

	var g errgroup.Group
	g.Go(func() error { return a.vm.LoadConversations(a.ctx) })
	g.Go(func() error { return a.vm.LoadStatus(a.ctx) })
	if err := g.Wait(); err != nil && a.ctx.Err() == nil {
		a.vm.Flash.Err("Refresh failed", err)
	}

	a.app.QueueUpdateDraw(func() {
		a.statusBar.SetLoading(false)
		a.render()
	})
}

// render copies view model state into the widgets. Must run on the UI
// goroutine.
func (a *App) render() {
	a.list.Update(a.vm.Conversations())
	if a.pages.Current() == pageThread {
		if conv, ok := a.vm.Selected(); ok {
			a.thread.Update(conv)
		}
	}

	data := &ui.ProfileData{Profile: a.profile, Gateway: a.gateway}
	data.Conversations, data.Unregistered = a.vm.Counts()
	if snap := a.vm.Status(); snap != nil {
		data.State = string(snap.State)
		data.LastError = snap.LastError
		data.LastLoad = snap.LastLoad
		a.statusBar.SetState(data.State)
	}
	a.info.Update(data, time.Now())
	a.statusBar.SetFlash(a.vm.Flash.Get())
}

// Run starts the TUI application and blocks until it exits.
func (a *App) Run() error {
	defer a.cancel()

	a.render()
	a.updateMenu()
	go func() {
		a.reload()
		a.startRefreshLoop()
	}()

	return a.app.Run()
}

func (a *App) startRefreshLoop() {
	ticker := time.NewTicker(RefreshInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			a.reload()
		case <-a.ctx.Done():
			return
		}
	}
}

// Stop gracefully shuts down the TUI.
func (a *App) Stop() {
	a.cancel()
	a.app.Stop()
}
