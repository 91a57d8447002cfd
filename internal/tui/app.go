// Terminal storefront UI built on bubbletea (Elm architecture: model,
// update, view). It is a thin consumer of the stores: every key press maps
// to a store method, and everything on screen is read back from derived
// store state, so the synchronization logic stays in one place.
package tui

import (
	"fmt"
	"strings"

	"etalase/internal/checkout"
	"etalase/internal/models"
	"etalase/internal/stores"
	"etalase/pkg/notify"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// appState represents which screen we're on.
type appState int

const (
	stateAuth     appState = iota // login / register form
	stateCatalog                  // filtered product list
	stateCart                     // cart lines + totals
	stateWishlist                 // wishlist entries
	stateOrders                   // placed orders
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#5B8DEF"))
	noticeSuccessStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#4CAF50"))
	noticeInfoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#AAAAAA"))
	noticeErrorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))
	helpStyle          = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
	selectedStyle      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FFD866"))
)

// noticeMsg carries a bus notification into the update loop.
type noticeMsg notify.Notification

// busClosedMsg signals that the notification bus shut down.
type busClosedMsg struct{}

// productItem adapts a product to the bubbles list.
type productItem struct {
	product models.Product
}

func (i productItem) Title() string {
	return fmt.Sprintf("%s  $%.2f", i.product.Name, i.product.Price)
}

func (i productItem) Description() string {
	return fmt.Sprintf("[%s] %s", i.product.Category, i.product.Description)
}

func (i productItem) FilterValue() string { return i.product.Name }

// App is the application model. It holds all UI state; domain state lives
// in the stores.
type App struct {
	session  *stores.SessionStore
	cart     *stores.CartStore
	wishlist *stores.WishlistStore
	catalog  *stores.CatalogStore
	orders   *checkout.Processor
	notices  <-chan notify.Notification

	state       appState
	width       int
	height      int
	productList list.Model

	emailInput    textinput.Model
	passwordInput textinput.Model
	nameInput     textinput.Model
	searchInput   textinput.Model
	registering   bool
	searching     bool
	authField     int // which auth input has focus

	cartCursor      int
	wishCursor      int
	currentSort     stores.SortOption
	currentCategory string

	notice      string
	noticeLevel notify.Level

	// Demo shipping details used when placing an order from the cart
	// screen; a full address form is out of place in a keyboard demo.
	shipping checkout.Form
}

// NewApp creates the TUI over the given stores and subscribes to the
// notification bus.
func NewApp(session *stores.SessionStore, cart *stores.CartStore, wishlist *stores.WishlistStore, catalog *stores.CatalogStore, orders *checkout.Processor, bus *notify.Bus) *App {
	email := textinput.New()
	email.Placeholder = "email"
	email.Focus()
	password := textinput.New()
	password.Placeholder = "password"
	password.EchoMode = textinput.EchoPassword
	name := textinput.New()
	name.Placeholder = "name"
	search := textinput.New()
	search.Placeholder = "search products"

	productList := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	productList.Title = "Catalog"
	productList.SetShowStatusBar(false)
	productList.SetFilteringEnabled(false) // filtering is the catalog store's job

	state := stateAuth
	if session.IsAuthenticated() {
		state = stateCatalog
	}

	return &App{
		session:         session,
		cart:            cart,
		wishlist:        wishlist,
		catalog:         catalog,
		orders:          orders,
		notices:         bus.Subscribe(),
		state:           state,
		productList:     productList,
		emailInput:      email,
		passwordInput:   password,
		nameInput:       name,
		searchInput:     search,
		currentSort:     stores.SortDefault,
		currentCategory: stores.CategoryAll,
		shipping: checkout.Form{
			FullName:      "Etalase Demo",
			Address:       "Jl. Contoh No. 1",
			City:          "Jakarta",
			PostalCode:    "10110",
			Country:       "Indonesia",
			PaymentMethod: models.PaymentCash,
		},
	}
}

// Init starts listening for notifications.
func (a *App) Init() tea.Cmd {
	a.refreshProductList()
	return a.waitForNotice()
}

func (a *App) waitForNotice() tea.Cmd {
	return func() tea.Msg {
		n, ok := <-a.notices
		if !ok {
			return busClosedMsg{}
		}
		return noticeMsg(n)
	}
}

func (a *App) refreshProductList() {
	filtered := a.catalog.Filtered()
	items := make([]list.Item, len(filtered))
	for i, p := range filtered {
		items[i] = productItem{product: p}
	}
	a.productList.SetItems(items)
}

// Update routes messages per the current screen.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.productList.SetSize(msg.Width-4, msg.Height-8)
		return a, nil

	case noticeMsg:
		a.notice = msg.Message
		a.noticeLevel = msg.Level
		return a, a.waitForNotice()

	case busClosedMsg:
		return a, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return a, tea.Quit
		}
		switch a.state {
		case stateAuth:
			return a.updateAuth(msg)
		case stateCatalog:
			return a.updateCatalog(msg)
		case stateCart:
			return a.updateCart(msg)
		case stateWishlist:
			return a.updateWishlist(msg)
		case stateOrders:
			return a.updateOrders(msg)
		}
	}
	return a, nil
}

func (a *App) focusAuthField() {
	inputs := a.authInputs()
	for i, in := range inputs {
		if i == a.authField {
			in.Focus()
		} else {
			in.Blur()
		}
	}
}

func (a *App) authInputs() []*textinput.Model {
	if a.registering {
		return []*textinput.Model{&a.nameInput, &a.emailInput, &a.passwordInput}
	}
	return []*textinput.Model{&a.emailInput, &a.passwordInput}
}

func (a *App) updateAuth(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyTab, tea.KeyDown:
		a.authField = (a.authField + 1) % len(a.authInputs())
		a.focusAuthField()
		return a, nil
	case tea.KeyUp:
		a.authField = (a.authField + len(a.authInputs()) - 1) % len(a.authInputs())
		a.focusAuthField()
		return a, nil
	case tea.KeyEnter:
		var ok bool
		if a.registering {
			ok = a.session.Register(a.nameInput.Value(), a.emailInput.Value(), a.passwordInput.Value())
		} else {
			ok = a.session.Login(a.emailInput.Value(), a.passwordInput.Value())
		}
		if ok {
			a.state = stateCatalog
		}
		return a, nil
	case tea.KeyCtrlR:
		a.registering = !a.registering
		a.authField = 0
		a.focusAuthField()
		return a, nil
	}

	inputs := a.authInputs()
	var cmd tea.Cmd
	*inputs[a.authField], cmd = inputs[a.authField].Update(msg)
	return a, cmd
}

func (a *App) updateCatalog(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if a.searching {
		switch msg.Type {
		case tea.KeyEnter, tea.KeyEsc:
			a.searching = false
			a.searchInput.Blur()
			return a, nil
		}
		var cmd tea.Cmd
		a.searchInput, cmd = a.searchInput.Update(msg)
		a.catalog.SetSearchTerm(a.searchInput.Value())
		a.refreshProductList()
		return a, cmd
	}

	switch msg.String() {
	case "/":
		a.searching = true
		a.searchInput.Focus()
		return a, nil
	case "c":
		a.state = stateCart
		return a, nil
	case "w":
		a.state = stateWishlist
		return a, nil
	case "o":
		a.state = stateOrders
		return a, nil
	case "q":
		return a, tea.Quit
	case "s":
		a.cycleSort()
		a.refreshProductList()
		return a, nil
	case "g":
		a.cycleCategory()
		a.refreshProductList()
		return a, nil
	case "enter":
		if item, ok := a.productList.SelectedItem().(productItem); ok {
			a.cart.AddToCart(item.product, 1)
		}
		return a, nil
	case "+":
		if item, ok := a.productList.SelectedItem().(productItem); ok {
			a.wishlist.AddToWishlist(item.product)
		}
		return a, nil
	}

	var cmd tea.Cmd
	a.productList, cmd = a.productList.Update(msg)
	return a, cmd
}

var sortCycle = []stores.SortOption{
	stores.SortDefault,
	stores.SortPriceLow,
	stores.SortPriceHigh,
	stores.SortNewest,
}

func (a *App) cycleSort() {
	for i, opt := range sortCycle {
		if a.currentSort == opt {
			a.currentSort = sortCycle[(i+1)%len(sortCycle)]
			a.catalog.SetSortOption(a.currentSort)
			return
		}
	}
	a.currentSort = stores.SortDefault
	a.catalog.SetSortOption(a.currentSort)
}

func (a *App) cycleCategory() {
	options := append([]string{stores.CategoryAll}, a.catalog.Categories()...)
	next := options[0]
	for i, cat := range options {
		if cat == a.currentCategory {
			next = options[(i+1)%len(options)]
			break
		}
	}
	a.currentCategory = next
	a.catalog.SetCategory(next)
}

func (a *App) updateCart(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	items := a.cart.Items()
	if a.cartCursor >= len(items) {
		a.cartCursor = max(0, len(items)-1)
	}

	switch msg.String() {
	case "esc", "b":
		a.state = stateCatalog
		return a, nil
	case "up", "k":
		if a.cartCursor > 0 {
			a.cartCursor--
		}
	case "down", "j":
		if a.cartCursor < len(items)-1 {
			a.cartCursor++
		}
	case "+":
		if len(items) > 0 {
			line := items[a.cartCursor]
			a.cart.UpdateQuantity(line.ProductID, line.Quantity+1)
		}
	case "-":
		if len(items) > 0 {
			line := items[a.cartCursor]
			a.cart.UpdateQuantity(line.ProductID, line.Quantity-1)
		}
	case "x":
		if len(items) > 0 {
			a.cart.RemoveFromCart(items[a.cartCursor].ProductID)
		}
	case "C":
		a.cart.ClearCart()
	case "p":
		if _, ok := a.orders.PlaceOrder(a.shipping); ok {
			a.state = stateOrders
		}
	}
	return a, nil
}

func (a *App) updateWishlist(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	items := a.wishlist.Items()
	if a.wishCursor >= len(items) {
		a.wishCursor = max(0, len(items)-1)
	}

	switch msg.String() {
	case "esc", "b":
		a.state = stateCatalog
		return a, nil
	case "up", "k":
		if a.wishCursor > 0 {
			a.wishCursor--
		}
	case "down", "j":
		if a.wishCursor < len(items)-1 {
			a.wishCursor++
		}
	case "x":
		if len(items) > 0 {
			a.wishlist.RemoveFromWishlist(items[a.wishCursor].ProductID)
		}
	case "m":
		if len(items) > 0 {
			a.wishlist.MoveToCart(items[a.wishCursor].ProductID)
		}
	}
	return a, nil
}

func (a *App) updateOrders(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "b":
		a.state = stateCatalog
	case "l":
		a.session.Logout()
		a.state = stateAuth
	}
	return a, nil
}

// View renders the current screen plus the shared header, notice line and
// key help.
func (a *App) View() string {
	var content string
	switch a.state {
	case stateAuth:
		content = a.viewAuth()
	case stateCatalog:
		content = a.viewCatalog()
	case stateCart:
		content = a.viewCart()
	case stateWishlist:
		content = a.viewWishlist()
	case stateOrders:
		content = a.viewOrders()
	}

	header := titleStyle.Render("etalase") + "  " + a.viewBadges()
	return lipgloss.JoinVertical(lipgloss.Left, header, "", content, "", a.viewNotice(), a.viewHelp())
}

func (a *App) viewBadges() string {
	user := a.session.CurrentUser()
	if user == nil {
		return helpStyle.Render("not signed in")
	}
	return helpStyle.Render(fmt.Sprintf("%s | cart %d | total $%.2f", user.Email, a.cart.CartCount(), a.cart.CartTotal()))
}

func (a *App) viewNotice() string {
	if a.notice == "" {
		return ""
	}
	switch a.noticeLevel {
	case notify.LevelSuccess:
		return noticeSuccessStyle.Render(a.notice)
	case notify.LevelError:
		return noticeErrorStyle.Render(a.notice)
	default:
		return noticeInfoStyle.Render(a.notice)
	}
}

func (a *App) viewHelp() string {
	switch a.state {
	case stateAuth:
		return helpStyle.Render("enter submit · tab next field · ctrl+r toggle login/register · ctrl+c quit")
	case stateCatalog:
		return helpStyle.Render("enter add to cart · + wishlist · / search · s sort · g category · c cart · w wishlist · o orders · q quit")
	case stateCart:
		return helpStyle.Render("+/- quantity · x remove · C clear · p place order · b back")
	case stateWishlist:
		return helpStyle.Render("m move to cart · x remove · b back")
	default:
		return helpStyle.Render("l logout · b back")
	}
}

func (a *App) viewAuth() string {
	var b strings.Builder
	if a.registering {
		b.WriteString("Create an account\n\n")
		b.WriteString(a.nameInput.View() + "\n")
	} else {
		b.WriteString("Sign in\n\n")
	}
	b.WriteString(a.emailInput.View() + "\n")
	b.WriteString(a.passwordInput.View() + "\n")
	return b.String()
}

func (a *App) viewCatalog() string {
	var b strings.Builder
	if a.searching {
		b.WriteString(a.searchInput.View() + "\n")
	}
	b.WriteString(fmt.Sprintf("category: %s · sort: %s\n", a.categoryLabel(), a.currentSort))
	b.WriteString(a.productList.View())
	return b.String()
}

func (a *App) categoryLabel() string {
	if a.currentCategory == "" {
		return stores.CategoryAll
	}
	return a.currentCategory
}

func (a *App) viewCart() string {
	items := a.cart.Items()
	if len(items) == 0 {
		return "Your cart is empty."
	}

	var b strings.Builder
	b.WriteString("Cart\n\n")
	for i, line := range items {
		row := fmt.Sprintf("%dx %-30s $%8.2f", line.Quantity, line.Name, line.Price*float64(line.Quantity))
		if i == a.cartCursor {
			row = selectedStyle.Render("> " + row)
		} else {
			row = "  " + row
		}
		b.WriteString(row + "\n")
	}
	b.WriteString(fmt.Sprintf("\nTotal: $%.2f\n", a.cart.CartTotal()))
	return b.String()
}

func (a *App) viewWishlist() string {
	items := a.wishlist.Items()
	if len(items) == 0 {
		return "Your wishlist is empty."
	}

	var b strings.Builder
	b.WriteString("Wishlist\n\n")
	for i, entry := range items {
		row := fmt.Sprintf("%-30s $%8.2f", entry.Name, entry.Price)
		if i == a.wishCursor {
			row = selectedStyle.Render("> " + row)
		} else {
			row = "  " + row
		}
		b.WriteString(row + "\n")
	}
	return b.String()
}

func (a *App) viewOrders() string {
	user := a.session.CurrentUser()
	if user == nil || len(user.Orders) == 0 {
		return "No orders yet."
	}

	var b strings.Builder
	b.WriteString("Orders\n\n")
	for _, order := range user.Orders {
		b.WriteString(fmt.Sprintf("%s  %s  $%.2f  %s\n", order.ID, order.CreatedAt.Format("2006-01-02 15:04"), order.Total, order.Status))
		for _, item := range order.Items {
			b.WriteString(fmt.Sprintf("    %dx %s\n", item.Quantity, item.Name))
		}
	}
	return b.String()
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
