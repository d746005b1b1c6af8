package tui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"skybook-cli/flow"
	"skybook-cli/model"
	"skybook-cli/service"
	"skybook-cli/store"
)

type appState int

const (
	stateLoadingAirports appState = iota
	stateSelectTripType
	stateSelectOrigin
	stateSelectDestination
	stateSelectDate
	stateSelectReturnDate
	stateSelectPassengers
	stateSelectCabin
	stateLoadingTrips
	stateSelectOutbound
	stateSelectReturn
	stateSignIn
	stateCheckoutPassengers
	stateCheckoutPayment
	stateCheckoutDone
	stateLoadingBookings
	stateBookings
	stateLoadingBookingDetail
	stateBookingDetail
	stateError
)

type appModel struct {
	client *service.Client
	logger *slog.Logger

	state         appState
	lastState     appState
	err           error
	errRetryState appState
	errRetryable  bool

	width  int
	height int

	airports []model.Airport
	session  service.Session

	tripType    string
	origin      model.Airport
	destination model.Airport
	departDate  time.Time
	returnDate  time.Time
	passengers  int
	cabin       string

	outboundTrips   []model.Trip
	returnTrips     []model.Trip
	outbound        model.Trip
	returnTrip      model.Trip
	searchingReturn bool
	tripSort        tripSort

	tripTypeList    list.Model
	originList      list.Model
	destinationList list.Model
	dateList        list.Model
	passengerList   list.Model
	cabinList       list.Model
	tripList        list.Model
	bookingList     list.Model

	signIn         signInModel
	signInToBooks  bool
	bookingsReturn appState
	detailReturn   appState

	checkout *checkoutModel

	bookingDetail model.Booking
	cancelling    bool

	spinner spinner.Model
}

type errMsg struct {
	err            error
	returnState    appState
	returnStateSet bool
	retryState     appState
	retryable      bool
}

type airportsMsg struct {
	airports []model.Airport
	err      error
}

type tripsMsg struct {
	trips     []model.Trip
	forReturn bool
	err       error
}

type faresMsg struct {
	err error
}

type sessionMsg struct {
	session service.Session
	err     error
}

type submitMsg struct {
	bookingId int
	err       error
}

type bookingsMsg struct {
	bookings []model.BookingSummary
	err      error
}

type bookingDetailMsg struct {
	booking model.Booking
	err     error
}

type bookingCancelledMsg struct {
	id  int
	err error
}

// New builds the root model. A non-nil deep link with an outbound trip
// skips the search wizard and opens checkout directly.
func New(client *service.Client, logger *slog.Logger, deepLink *model.TripSelection) tea.Model {
	if logger == nil {
		logger = slog.Default()
	}
	m := appModel{
		client: client,
		logger: logger,
		state:  stateLoadingAirports,
	}

	m.tripTypeList = newList("Trip Type")
	m.originList = newList("From")
	m.destinationList = newList("To")
	m.dateList = newList("Departure Date")
	m.passengerList = newList("Passengers")
	m.cabinList = newList("Cabin Class")
	m.tripList = newList("Flights")
	m.bookingList = newList("My Bookings")

	m.tripTypeList.SetItems(buildTripTypeItems())
	m.passengerList.SetItems(buildPassengerItems())
	m.cabinList.SetItems(buildCabinItems())

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("5"))
	m.spinner = sp

	if session, err := store.LoadSession(); err == nil && client.Resume(session) {
		m.session = session
	}

	if deepLink != nil && deepLink.OutboundId != 0 {
		m.tripType = deepLink.TripType
		m.passengers = deepLink.Passengers
		m.cabin = deepLink.CabinClass
		m.checkout = newCheckout(flow.New(*deepLink, client, client, logger))
		if client.Authenticated() {
			m.state = stateCheckoutPassengers
		} else {
			m.signIn = newSignIn()
			m.state = stateSignIn
		}
	}

	return m
}

func (m appModel) Init() tea.Cmd {
	cmds := []tea.Cmd{m.spinner.Tick, m.fetchAirportsCmd()}
	if m.checkout != nil {
		cmds = append(cmds, loadFaresCmd(m.checkout.flow))
	}
	if m.state == stateCheckoutPassengers {
		cmds = append(cmds, m.checkout.focusCmd())
	}
	if m.state == stateSignIn {
		cmds = append(cmds, m.signIn.focusCmd())
	}
	return tea.Batch(cmds...)
}

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resizeLists()
		return m, nil

	case tea.KeyMsg:
		if m.isFormState() {
			return m.handleFormKey(msg)
		}
		if m.handleFilterInput(msg) {
			return m, nil
		}
		m, cmd, handled := m.handleKey(msg)
		if handled {
			return m, cmd
		}
		// fallthrough to component update
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		if m.isLoadingState() || m.isSubmitting() {
			return m, cmd
		}
		return m, nil

	case errMsg:
		m.err = msg.err
		if msg.returnStateSet {
			m.lastState = msg.returnState
		} else {
			m.lastState = recoverStateFrom(m.state)
		}
		m.errRetryState = msg.retryState
		m.errRetryable = msg.retryable
		m.state = stateError
		return m, nil

	case airportsMsg:
		if msg.err != nil {
			return m, errWithRetryCmd(msg.err, stateLoadingAirports, stateLoadingAirports)
		}
		m.airports = msg.airports
		m.originList.SetItems(buildAirportItems(msg.airports, 0, true))
		if m.state == stateLoadingAirports {
			m.state = stateSelectTripType
		}
		return m, nil

	case tripsMsg:
		return m.handleTrips(msg)

	case faresMsg:
		if msg.err != nil && m.checkout != nil {
			return m, errWithOptionsCmd(msg.err, m.state, m.checkoutFareRetryState(), true)
		}
		return m, nil

	case sessionMsg:
		m.signIn.submitting = false
		if msg.err != nil {
			m.signIn.note = signInFailureNote(msg.err)
			return m, nil
		}
		m.session = msg.session
		_ = store.SaveSession(msg.session)
		if m.signInToBooks {
			m.signInToBooks = false
			m.state = stateLoadingBookings
			return m, tea.Batch(m.fetchBookingsCmd(), m.spinner.Tick)
		}
		if m.checkout != nil {
			m.state = stateCheckoutPassengers
			return m, m.checkout.focusCmd()
		}
		m.state = stateSelectTripType
		return m, nil

	case submitMsg:
		if m.checkout != nil {
			m.checkout.submitting = false
			if msg.err != nil {
				m.checkout.note = submitFailureNote(msg.err)
				return m, nil
			}
			m.checkout.note = ""
			m.state = stateCheckoutDone
		}
		return m, nil

	case bookingsMsg:
		if msg.err != nil {
			return m, errWithOptionsCmd(msg.err, m.bookingsReturn, stateLoadingBookings, true)
		}
		m.bookingList.SetItems(buildBookingItems(msg.bookings))
		m.bookingList.Select(0)
		m.state = stateBookings
		return m, nil

	case bookingDetailMsg:
		if msg.err != nil {
			return m, errWithOptionsCmd(msg.err, m.detailReturn, 0, false)
		}
		m.bookingDetail = msg.booking
		m.state = stateBookingDetail
		return m, nil

	case bookingCancelledMsg:
		m.cancelling = false
		if msg.err != nil {
			return m, errWithOptionsCmd(msg.err, stateBookingDetail, 0, false)
		}
		m.bookingDetail.Status = "cancelled"
		return m, nil
	}

	var cmd tea.Cmd
	if listPtr := m.activeList(); listPtr != nil {
		*listPtr, cmd = listPtr.Update(msg)
	}
	return m, cmd
}

func (m appModel) handleTrips(msg tripsMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		return m, errWithOptionsCmd(msg.err, stateSelectCabin, stateLoadingTrips, true)
	}
	date := m.departDate
	if msg.forReturn {
		date = m.returnDate
	}
	if len(msg.trips) == 0 {
		return m, errWithOptionsCmd(
			fmt.Errorf("no flights found for %s, try another date", date.Format(time.DateOnly)),
			stateSelectDate,
			0,
			false,
		)
	}
	if msg.forReturn {
		m.returnTrips = msg.trips
		m.state = stateSelectReturn
	} else {
		m.outboundTrips = msg.trips
		m.state = stateSelectOutbound
	}
	m.tripList.Title = m.tripListTitle(msg.forReturn)
	m.tripList.SetItems(buildTripItems(msg.trips, m.cabin, m.tripSort))
	m.tripList.Select(0)
	return m, nil
}

func (m appModel) tripListTitle(forReturn bool) string {
	if forReturn {
		return fmt.Sprintf("Return Flights • %s → %s • by %s", m.destination.Code, m.origin.Code, m.tripSort)
	}
	return fmt.Sprintf("Flights • %s → %s • by %s", m.origin.Code, m.destination.Code, m.tripSort)
}

func (m appModel) View() string {
	header := m.headerView()
	switch m.state {
	case stateLoadingAirports, stateLoadingTrips, stateLoadingBookings, stateLoadingBookingDetail:
		return header + "\n\n" + m.loadingView()
	case stateSelectTripType:
		return header + "\n\n" + m.tripTypeList.View()
	case stateSelectOrigin:
		return header + "\n\n" + m.originList.View()
	case stateSelectDestination:
		return header + "\n\n" + m.destinationList.View()
	case stateSelectDate, stateSelectReturnDate:
		return header + "\n\n" + m.dateList.View()
	case stateSelectPassengers:
		return header + "\n\n" + m.passengerList.View()
	case stateSelectCabin:
		return header + "\n\n" + m.cabinList.View()
	case stateSelectOutbound, stateSelectReturn:
		return header + "\n\n" + m.tripList.View()
	case stateSignIn:
		return header + "\n\n" + m.signIn.view()
	case stateCheckoutPassengers, stateCheckoutPayment:
		return header + "\n\n" + m.checkout.view(m.spinner)
	case stateCheckoutDone:
		return header + "\n\n" + m.checkoutDoneView()
	case stateBookings:
		return header + "\n\n" + m.bookingList.View()
	case stateBookingDetail:
		return header + "\n\n" + m.bookingDetailView()
	case stateError:
		return header + "\n\n" + m.errorView()
	default:
		return header
	}
}

func (m appModel) headerView() string {
	title := lipgloss.NewStyle().Bold(true).Render("SkyBook")
	sub := []string{}
	if m.origin.Code != "" && m.destination.Code != "" {
		route := fmt.Sprintf("%s → %s", m.origin.Code, m.destination.Code)
		if m.tripType == model.TripTypeRoundTrip {
			route = fmt.Sprintf("%s ⇄ %s", m.origin.Code, m.destination.Code)
		}
		sub = append(sub, route)
	}
	if !m.departDate.IsZero() {
		dates := m.departDate.Format(time.DateOnly)
		if m.tripType == model.TripTypeRoundTrip && !m.returnDate.IsZero() {
			dates += " / " + m.returnDate.Format(time.DateOnly)
		}
		sub = append(sub, dates)
	}
	if m.passengers > 0 {
		sub = append(sub, fmt.Sprintf("%d pax • %s", m.passengers, m.cabin))
	}
	if m.session.User.Email != "" {
		sub = append(sub, m.session.User.Email)
	}
	meta := strings.Join(sub, " • ")
	if meta != "" {
		meta = "\n" + lipgloss.NewStyle().Faint(true).Render(meta)
	}
	filterLine := ""
	if listPtr := m.activeList(); listPtr != nil {
		if filter := listPtr.FilterValue(); filter != "" {
			filterLine = "\n" + hint(fmt.Sprintf("Filter: %s", filter))
		}
	}
	return title + meta + filterLine + "\n" + hint(m.hints())
}

func (m appModel) hints() string {
	switch m.state {
	case stateSelectOrigin, stateSelectDestination:
		return "ctrl+c quit • esc back • type to filter • enter select • ctrl+b my bookings"
	case stateSelectOutbound, stateSelectReturn:
		return "ctrl+c quit • esc back • type to filter • ctrl+s sort • enter book"
	case stateSignIn:
		return "ctrl+c quit • esc cancel • tab next field • enter submit • ctrl+n toggle sign in/up"
	case stateCheckoutPassengers:
		return "ctrl+c quit • esc cancel checkout • tab next field • ←/→ gender • ctrl+a add passenger • enter continue"
	case stateCheckoutPayment:
		return "ctrl+c quit • esc cancel checkout • tab next field • enter pay"
	case stateCheckoutDone:
		return "enter view booking • n new search • ctrl+c quit"
	case stateBookings:
		return "ctrl+c quit • esc back • enter details • ctrl+o sign out"
	case stateBookingDetail:
		return "ctrl+c quit • esc back • x cancel booking"
	case stateError:
		if m.errRetryable {
			return "enter retry • esc back • ctrl+c quit"
		}
		return "esc back • ctrl+c quit"
	default:
		return "ctrl+c quit • esc back • enter select • ctrl+b my bookings"
	}
}

func (m appModel) errorView() string {
	text := lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Render(m.err.Error())
	if m.errRetryable {
		return text + "\n\n" + hint("Press enter to retry, esc to go back or ctrl+c to quit.")
	}
	return text + "\n\n" + hint("Press esc to go back or ctrl+c to quit.")
}

func (m appModel) checkoutDoneView() string {
	ok := lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Bold(true)
	lines := []string{
		ok.Render("Booking confirmed"),
		"",
		fmt.Sprintf("Booking reference: #%d", m.checkout.flow.BookingId()),
	}
	if price, err := m.checkout.flow.Price(); err == nil {
		lines = append(lines, fmt.Sprintf("Amount charged: %s", formatPrice(price.Total)))
	}
	lines = append(lines, "", hint("A confirmation has been sent to "+m.checkout.flow.Contact().Email))
	return strings.Join(lines, "\n")
}

func (m appModel) handleKey(msg tea.KeyMsg) (appModel, tea.Cmd, bool) {
	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit, true
	case "esc":
		if listPtr := m.activeList(); listPtr != nil {
			if listPtr.SettingFilter() || listPtr.IsFiltered() {
				listPtr.ResetFilter()
				return m, nil, true
			}
		}
		next, cmd := m.goBack()
		return next, cmd, true
	case "ctrl+b":
		if m.isWizardState() {
			return m.openBookings()
		}
	case "ctrl+s":
		if m.state == stateSelectOutbound || m.state == stateSelectReturn {
			return m.cycleTripSort(), nil, true
		}
	case "ctrl+o":
		if m.state == stateBookings {
			_ = store.ClearSession()
			m.client.SetToken("")
			m.session = service.Session{}
			m.state = m.bookingsReturn
			return m, nil, true
		}
	case "n":
		if m.state == stateCheckoutDone {
			return m.resetToSearch(), nil, true
		}
	case "x":
		if m.state == stateBookingDetail && !m.cancelling && !strings.EqualFold(m.bookingDetail.Status, "cancelled") {
			m.cancelling = true
			return m, tea.Batch(m.cancelBookingCmd(m.bookingDetail.Id), m.spinner.Tick), true
		}
	}

	if msg.Type == tea.KeyEnter {
		return m.handleEnter()
	}
	return m, nil, false
}

func (m appModel) handleEnter() (appModel, tea.Cmd, bool) {
	switch m.state {
	case stateError:
		if m.errRetryable {
			return m.retryFromError()
		}
		return m, nil, true
	case stateSelectTripType:
		item, ok := m.tripTypeList.SelectedItem().(choiceItem)
		if !ok {
			return m, nil, true
		}
		m.tripType = item.value
		m.state = stateSelectOrigin
		return m, nil, true
	case stateSelectOrigin:
		item, ok := m.originList.SelectedItem().(airportItem)
		if !ok {
			return m, nil, true
		}
		m.origin = item.airport
		m.destinationList.SetItems(buildAirportItems(m.airports, m.origin.Id, false))
		m.destinationList.Select(0)
		m.state = stateSelectDestination
		return m, nil, true
	case stateSelectDestination:
		item, ok := m.destinationList.SelectedItem().(airportItem)
		if !ok {
			return m, nil, true
		}
		m.destination = item.airport
		m.dateList.Title = "Departure Date"
		m.dateList.SetItems(buildDateItems(truncateDate(time.Now()), 14))
		m.dateList.Select(0)
		m.state = stateSelectDate
		return m, nil, true
	case stateSelectDate:
		item, ok := m.dateList.SelectedItem().(dateItem)
		if !ok {
			return m, nil, true
		}
		m.departDate = item.date
		if m.tripType == model.TripTypeRoundTrip {
			m.dateList.Title = "Return Date"
			m.dateList.SetItems(buildDateItems(m.departDate, 14))
			m.dateList.Select(0)
			m.state = stateSelectReturnDate
			return m, nil, true
		}
		m.state = stateSelectPassengers
		return m, nil, true
	case stateSelectReturnDate:
		item, ok := m.dateList.SelectedItem().(dateItem)
		if !ok {
			return m, nil, true
		}
		m.returnDate = item.date
		m.state = stateSelectPassengers
		return m, nil, true
	case stateSelectPassengers:
		item, ok := m.passengerList.SelectedItem().(choiceItem)
		if !ok {
			return m, nil, true
		}
		m.passengers = item.count
		m.state = stateSelectCabin
		return m, nil, true
	case stateSelectCabin:
		item, ok := m.cabinList.SelectedItem().(choiceItem)
		if !ok {
			return m, nil, true
		}
		m.cabin = item.value
		_ = store.RememberSearch(m.tripType, m.origin, m.destination)
		m.searchingReturn = false
		m.state = stateLoadingTrips
		return m, tea.Batch(m.searchTripsCmd(false), m.spinner.Tick), true
	case stateSelectOutbound:
		item, ok := m.tripList.SelectedItem().(tripItem)
		if !ok {
			return m, nil, true
		}
		if seats := cabinSeats(item.trip, m.cabin); seats < m.passengers {
			return m, errCmd(fmt.Errorf("only %d %s seats left on this flight", seats, m.cabin)), true
		}
		m.outbound = item.trip
		if m.tripType == model.TripTypeRoundTrip {
			m.searchingReturn = true
			m.state = stateLoadingTrips
			return m, tea.Batch(m.searchTripsCmd(true), m.spinner.Tick), true
		}
		return m.openCheckout()
	case stateSelectReturn:
		item, ok := m.tripList.SelectedItem().(tripItem)
		if !ok {
			return m, nil, true
		}
		if seats := cabinSeats(item.trip, m.cabin); seats < m.passengers {
			return m, errCmd(fmt.Errorf("only %d %s seats left on this flight", seats, m.cabin)), true
		}
		m.returnTrip = item.trip
		return m.openCheckout()
	case stateBookings:
		item, ok := m.bookingList.SelectedItem().(bookingItem)
		if !ok {
			return m, nil, true
		}
		m.detailReturn = stateBookings
		m.state = stateLoadingBookingDetail
		return m, tea.Batch(m.fetchBookingDetailCmd(item.summary.Id), m.spinner.Tick), true
	case stateCheckoutDone:
		m.detailReturn = stateCheckoutDone
		m.state = stateLoadingBookingDetail
		return m, tea.Batch(m.fetchBookingDetailCmd(m.checkout.flow.BookingId()), m.spinner.Tick), true
	}
	return m, nil, false
}

func (m appModel) cycleTripSort() appModel {
	m.tripSort = m.tripSort.next()
	forReturn := m.state == stateSelectReturn
	trips := m.outboundTrips
	if forReturn {
		trips = m.returnTrips
	}
	m.tripList.Title = m.tripListTitle(forReturn)
	m.tripList.SetItems(buildTripItems(trips, m.cabin, m.tripSort))
	m.tripList.Select(0)
	return m
}

// openCheckout creates a fresh flow for the selected trips. Sign-in is
// required before the passenger step; fares are prefetched either way.
func (m appModel) openCheckout() (appModel, tea.Cmd, bool) {
	selection := model.TripSelection{
		TripType:   m.tripType,
		OutboundId: m.outbound.Id,
		Passengers: m.passengers,
		CabinClass: m.cabin,
	}
	if m.tripType == model.TripTypeRoundTrip {
		selection.ReturnTripId = m.returnTrip.Id
	}
	m.checkout = newCheckout(flow.New(selection, m.client, m.client, m.logger))
	if !m.client.Authenticated() {
		m.signIn = newSignIn()
		m.signInToBooks = false
		m.state = stateSignIn
		return m, tea.Batch(loadFaresCmd(m.checkout.flow), m.signIn.focusCmd()), true
	}
	m.state = stateCheckoutPassengers
	return m, tea.Batch(loadFaresCmd(m.checkout.flow), m.checkout.focusCmd()), true
}

func (m appModel) openBookings() (appModel, tea.Cmd, bool) {
	m.bookingsReturn = m.state
	if !m.client.Authenticated() {
		m.signIn = newSignIn()
		m.signInToBooks = true
		m.state = stateSignIn
		return m, m.signIn.focusCmd(), true
	}
	m.state = stateLoadingBookings
	return m, tea.Batch(m.fetchBookingsCmd(), m.spinner.Tick), true
}

func (m appModel) retryFromError() (appModel, tea.Cmd, bool) {
	switch m.errRetryState {
	case stateLoadingAirports:
		m.state = stateLoadingAirports
		return m, tea.Batch(m.fetchAirportsCmd(), m.spinner.Tick), true
	case stateLoadingTrips:
		m.state = stateLoadingTrips
		return m, tea.Batch(m.searchTripsCmd(m.searchingReturn), m.spinner.Tick), true
	case stateLoadingBookings:
		m.state = stateLoadingBookings
		return m, tea.Batch(m.fetchBookingsCmd(), m.spinner.Tick), true
	case stateCheckoutPassengers, stateCheckoutPayment:
		if m.checkout == nil {
			break
		}
		m.state = m.errRetryState
		return m, tea.Batch(loadFaresCmd(m.checkout.flow), m.spinner.Tick), true
	}
	m.state = m.lastState
	return m, nil, true
}

func (m appModel) checkoutFareRetryState() appState {
	if m.checkout != nil && m.checkout.flow.Step() == flow.StepPayment {
		return stateCheckoutPayment
	}
	return stateCheckoutPassengers
}

func (m appModel) goBack() (appModel, tea.Cmd) {
	switch m.state {
	case stateSelectOrigin:
		m.state = stateSelectTripType
	case stateSelectDestination:
		m.state = stateSelectOrigin
	case stateSelectDate:
		m.state = stateSelectDestination
	case stateSelectReturnDate:
		m.dateList.Title = "Departure Date"
		m.dateList.SetItems(buildDateItems(truncateDate(time.Now()), 14))
		m.state = stateSelectDate
	case stateSelectPassengers:
		if m.tripType == model.TripTypeRoundTrip {
			m.state = stateSelectReturnDate
		} else {
			m.state = stateSelectDate
		}
	case stateSelectCabin:
		m.state = stateSelectPassengers
	case stateSelectOutbound:
		m.state = stateSelectCabin
	case stateSelectReturn:
		m.tripList.Title = m.tripListTitle(false)
		m.tripList.SetItems(buildTripItems(m.outboundTrips, m.cabin, m.tripSort))
		m.state = stateSelectOutbound
	case stateSignIn:
		if m.signInToBooks {
			m.signInToBooks = false
			m.state = m.bookingsReturn
			return m, nil
		}
		m.checkout = nil
		return m.returnToTripList(), nil
	case stateCheckoutPassengers, stateCheckoutPayment:
		// cancelling checkout discards the flow entirely
		m.checkout = nil
		return m.returnToTripList(), nil
	case stateCheckoutDone:
		return m.resetToSearch(), nil
	case stateBookings:
		m.state = m.bookingsReturn
	case stateBookingDetail:
		m.state = m.detailReturn
	case stateError:
		m.state = m.lastState
		m.errRetryable = false
	default:
		return m, nil
	}
	return m, nil
}

func (m appModel) returnToTripList() appModel {
	if len(m.tripList.Items()) == 0 {
		m.state = stateSelectTripType
		return m
	}
	if m.tripType == model.TripTypeRoundTrip && m.returnTrip.Id != 0 {
		m.returnTrip = model.Trip{}
		m.state = stateSelectReturn
		return m
	}
	m.state = stateSelectOutbound
	return m
}

func (m appModel) resetToSearch() appModel {
	m.checkout = nil
	m.origin = model.Airport{}
	m.destination = model.Airport{}
	m.departDate = time.Time{}
	m.returnDate = time.Time{}
	m.passengers = 0
	m.cabin = ""
	m.outbound = model.Trip{}
	m.returnTrip = model.Trip{}
	m.outboundTrips = nil
	m.returnTrips = nil
	m.tripList.SetItems(nil)
	m.state = stateSelectTripType
	return m
}

func (m appModel) handleFormKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "esc":
		next, cmd := m.goBack()
		return next, cmd
	}
	switch m.state {
	case stateSignIn:
		var cmd tea.Cmd
		m.signIn, cmd = m.signIn.update(msg, m.client)
		if m.signIn.submitting {
			cmd = tea.Batch(cmd, m.spinner.Tick)
		}
		return m, cmd
	case stateCheckoutPassengers, stateCheckoutPayment:
		cmd, advanced := m.checkout.update(msg)
		if advanced {
			m.state = stateCheckoutPayment
		}
		if m.checkout.submitting {
			cmd = tea.Batch(cmd, m.spinner.Tick)
		}
		return m, cmd
	}
	return m, nil
}

func (m *appModel) handleFilterInput(msg tea.KeyMsg) bool {
	listPtr := m.activeList()
	if listPtr == nil {
		return false
	}
	if !listPtr.FilteringEnabled() {
		return false
	}
	switch msg.Type {
	case tea.KeyRunes:
		if len(msg.Runes) == 0 {
			return false
		}
		m.appendFilter(listPtr, string(msg.Runes))
		return true
	case tea.KeySpace:
		m.appendFilter(listPtr, " ")
		return true
	case tea.KeyBackspace, tea.KeyDelete:
		if listPtr.FilterValue() == "" {
			return false
		}
		m.popFilter(listPtr)
		return true
	default:
		return false
	}
}

func (m *appModel) appendFilter(listPtr *list.Model, value string) {
	if value == "" {
		return
	}
	current := listPtr.FilterValue()
	listPtr.SetFilterText(current + value)
}

func (m *appModel) popFilter(listPtr *list.Model) {
	value := listPtr.FilterValue()
	if value == "" {
		return
	}
	value = trimLastRune(value)
	if value == "" {
		listPtr.ResetFilter()
		return
	}
	listPtr.SetFilterText(value)
}

func trimLastRune(value string) string {
	runes := []rune(value)
	if len(runes) <= 1 {
		return ""
	}
	return string(runes[:len(runes)-1])
}

func (m *appModel) activeList() *list.Model {
	switch m.state {
	case stateSelectTripType:
		return &m.tripTypeList
	case stateSelectOrigin:
		return &m.originList
	case stateSelectDestination:
		return &m.destinationList
	case stateSelectDate, stateSelectReturnDate:
		return &m.dateList
	case stateSelectPassengers:
		return &m.passengerList
	case stateSelectCabin:
		return &m.cabinList
	case stateSelectOutbound, stateSelectReturn:
		return &m.tripList
	case stateBookings:
		return &m.bookingList
	default:
		return nil
	}
}

func (m appModel) isLoadingState() bool {
	return m.state == stateLoadingAirports ||
		m.state == stateLoadingTrips ||
		m.state == stateLoadingBookings ||
		m.state == stateLoadingBookingDetail
}

func (m appModel) isSubmitting() bool {
	if m.state == stateSignIn && m.signIn.submitting {
		return true
	}
	if m.checkout != nil && m.checkout.submitting {
		return true
	}
	return m.cancelling
}

func (m appModel) isFormState() bool {
	return m.state == stateSignIn ||
		m.state == stateCheckoutPassengers ||
		m.state == stateCheckoutPayment
}

func (m appModel) isWizardState() bool {
	switch m.state {
	case stateSelectTripType, stateSelectOrigin, stateSelectDestination,
		stateSelectDate, stateSelectReturnDate, stateSelectPassengers,
		stateSelectCabin, stateSelectOutbound, stateSelectReturn:
		return true
	}
	return false
}

func (m appModel) loadingView() string {
	title := "Loading"
	switch m.state {
	case stateLoadingAirports:
		title = "Loading airports"
	case stateLoadingTrips:
		title = "Searching flights"
	case stateLoadingBookings:
		title = "Loading your bookings"
	case stateLoadingBookingDetail:
		title = "Loading booking"
	}
	return fmt.Sprintf("%s %s\n\n%s", m.spinner.View(), title, hint("Fetching data..."))
}

func (m *appModel) resizeLists() {
	if m.width == 0 || m.height == 0 {
		return
	}
	h := m.height - 6
	if h < 6 {
		h = 6
	}
	m.tripTypeList.SetSize(m.width, h)
	m.originList.SetSize(m.width, h)
	m.destinationList.SetSize(m.width, h)
	m.dateList.SetSize(m.width, h)
	m.passengerList.SetSize(m.width, h)
	m.cabinList.SetSize(m.width, h)
	m.tripList.SetSize(m.width, h)
	m.bookingList.SetSize(m.width, h)
}

func newList(title string) list.Model {
	delegate := list.NewDefaultDelegate()
	delegate.ShowDescription = true
	l := list.New([]list.Item{}, delegate, 0, 0)
	l.Title = title
	l.Filter = caseInsensitiveFilter
	l.SetFilteringEnabled(true)
	l.SetShowFilter(true)
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	return l
}

func hint(text string) string {
	return lipgloss.NewStyle().Faint(true).Render(text)
}

func errCmd(err error) tea.Cmd {
	return func() tea.Msg {
		return errMsg{err: err}
	}
}

func errWithOptionsCmd(err error, returnState appState, retryState appState, retryable bool) tea.Cmd {
	return func() tea.Msg {
		return errMsg{
			err:            err,
			returnState:    returnState,
			returnStateSet: true,
			retryState:     retryState,
			retryable:      retryable,
		}
	}
}

func errWithRetryCmd(err error, returnState appState, retryState appState) tea.Cmd {
	return errWithOptionsCmd(err, returnState, retryState, true)
}

func recoverStateFrom(state appState) appState {
	switch state {
	case stateLoadingAirports:
		return stateSelectTripType
	case stateLoadingTrips:
		return stateSelectCabin
	case stateLoadingBookings, stateLoadingBookingDetail:
		return stateSelectTripType
	case stateError:
		return stateSelectTripType
	default:
		return state
	}
}

func truncateDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func caseInsensitiveFilter(term string, targets []string) []list.Rank {
	term = strings.ToLower(term)
	lower := make([]string, len(targets))
	for i, t := range targets {
		lower[i] = strings.ToLower(t)
	}
	return list.DefaultFilter(term, lower)
}

func (m appModel) fetchAirportsCmd() tea.Cmd {
	client := m.client
	return func() tea.Msg {
		if cached, fresh, err := store.LoadAirportCache(); err == nil && fresh && len(cached) > 0 {
			return airportsMsg{airports: cached}
		}
		airports, err := client.ListAirports(context.Background())
		if err == nil && len(airports) > 0 {
			_ = store.SaveAirportCache(airports)
		}
		return airportsMsg{airports: airports, err: err}
	}
}

func (m appModel) searchTripsCmd(forReturn bool) tea.Cmd {
	client := m.client
	origin, destination, date := m.origin, m.destination, m.departDate
	if forReturn {
		origin, destination, date = m.destination, m.origin, m.returnDate
	}
	return func() tea.Msg {
		trips, err := client.SearchTrips(context.Background(), origin.Id, destination.Id, date)
		return tripsMsg{trips: trips, forReturn: forReturn, err: err}
	}
}

func loadFaresCmd(f *flow.Controller) tea.Cmd {
	return func() tea.Msg {
		if err := f.LoadFares(context.Background()); err != nil {
			return faresMsg{err: err}
		}
		return faresMsg{}
	}
}

func submitCmd(f *flow.Controller) tea.Cmd {
	return func() tea.Msg {
		if err := f.ConfirmPayment(context.Background()); err != nil {
			return submitMsg{err: err}
		}
		return submitMsg{bookingId: f.BookingId()}
	}
}

func (m appModel) fetchBookingsCmd() tea.Cmd {
	client := m.client
	return func() tea.Msg {
		bookings, err := client.ListBookings(context.Background())
		return bookingsMsg{bookings: bookings, err: err}
	}
}

func (m appModel) fetchBookingDetailCmd(id int) tea.Cmd {
	client := m.client
	return func() tea.Msg {
		booking, err := client.GetBooking(context.Background(), id)
		return bookingDetailMsg{booking: booking, err: err}
	}
}

func (m appModel) cancelBookingCmd(id int) tea.Cmd {
	client := m.client
	return func() tea.Msg {
		err := client.CancelBooking(context.Background(), id)
		return bookingCancelledMsg{id: id, err: err}
	}
}

func signInFailureNote(err error) string {
	if service.IsUnauthorized(err) {
		return "Invalid email or password."
	}
	return err.Error()
}

func submitFailureNote(err error) string {
	if flow.IsValidation(err) {
		return err.Error()
	}
	if errors.Is(err, flow.ErrSubmitInFlight) {
		return "Submission already in progress."
	}
	return "Booking failed: " + err.Error() + " Press enter to try again."
}

type choiceItem struct {
	label string
	desc  string
	value string
	count int
}

func (c choiceItem) Title() string       { return c.label }
func (c choiceItem) Description() string { return c.desc }
func (c choiceItem) FilterValue() string { return strings.ToLower(c.label) }

func buildTripTypeItems() []list.Item {
	return []list.Item{
		choiceItem{label: "Round trip", desc: "Outbound and return flights", value: model.TripTypeRoundTrip},
		choiceItem{label: "One way", desc: "Outbound flight only", value: model.TripTypeOneWay},
	}
}

func buildPassengerItems() []list.Item {
	items := make([]list.Item, 0, 6)
	for i := 1; i <= 6; i++ {
		label := fmt.Sprintf("%d passengers", i)
		if i == 1 {
			label = "1 passenger"
		}
		items = append(items, choiceItem{label: label, count: i})
	}
	return items
}

func buildCabinItems() []list.Item {
	descs := map[string]string{
		model.CabinEconomy:  "Standard seating",
		model.CabinPremium:  "Extra legroom",
		model.CabinBusiness: "Lie-flat seats and lounge access",
		model.CabinFirst:    "Private suites",
	}
	items := make([]list.Item, 0, 4)
	for _, cabin := range model.CabinClasses() {
		items = append(items, choiceItem{label: titleCase(cabin), desc: descs[cabin], value: cabin})
	}
	return items
}

func titleCase(value string) string {
	if value == "" {
		return ""
	}
	return strings.ToUpper(value[:1]) + value[1:]
}

type airportItem struct {
	airport model.Airport
	recent  bool
}

func (a airportItem) Title() string {
	return fmt.Sprintf("%s • %s", a.airport.Code, a.airport.Name)
}

func (a airportItem) Description() string {
	if a.recent {
		return "Recent"
	}
	return ""
}

func (a airportItem) FilterValue() string {
	return strings.ToLower(a.airport.Code + " " + a.airport.Name)
}

// buildAirportItems lists airports with recently searched ones first. When
// building an origin list, airports seen as recent origins are promoted;
// for a destination list only pairs matching the chosen origin count.
func buildAirportItems(airports []model.Airport, excludeId int, asOrigin bool) []list.Item {
	recents, _ := store.LoadRecentSearches()
	recentIds := map[int]bool{}
	for _, recent := range recents {
		if asOrigin {
			recentIds[recent.OriginId] = true
		} else if recent.OriginId == excludeId {
			recentIds[recent.DestinationId] = true
		}
	}

	var promoted, remaining []model.Airport
	for _, airport := range airports {
		if airport.Id == excludeId {
			continue
		}
		if recentIds[airport.Id] {
			promoted = append(promoted, airport)
		} else {
			remaining = append(remaining, airport)
		}
	}
	sort.Slice(remaining, func(i, j int) bool {
		return strings.ToLower(remaining[i].Name) < strings.ToLower(remaining[j].Name)
	})

	items := make([]list.Item, 0, len(promoted)+len(remaining))
	for _, airport := range promoted {
		items = append(items, airportItem{airport: airport, recent: true})
	}
	for _, airport := range remaining {
		items = append(items, airportItem{airport: airport})
	}
	return items
}

type dateItem struct {
	date time.Time
}

func (d dateItem) Title() string {
	if isSameDay(d.date, time.Now()) {
		return fmt.Sprintf("%s • %s (Today)", d.date.Format("Mon"), d.date.Format("02/01"))
	}
	return fmt.Sprintf("%s • %s", d.date.Format("Mon"), d.date.Format("02/01"))
}

func (d dateItem) Description() string {
	return d.date.Format(time.DateOnly)
}

func (d dateItem) FilterValue() string {
	return d.Title()
}

func buildDateItems(base time.Time, days int) []list.Item {
	start := truncateDate(base)
	items := make([]list.Item, 0, days)
	for i := 0; i < days; i++ {
		items = append(items, dateItem{date: start.AddDate(0, 0, i)})
	}
	return items
}

func isSameDay(a time.Time, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

type tripItem struct {
	trip  model.Trip
	cabin string
}

func (t tripItem) Title() string {
	return fmt.Sprintf("%s %s • %s → %s",
		model.FormatTime(t.trip.Departure),
		model.FormatTime(t.trip.Arrival),
		t.trip.Origin.Code,
		t.trip.Destination.Code,
	)
}

func (t tripItem) Description() string {
	parts := []string{
		fmt.Sprintf("%s %s", t.trip.Flight.Airline.Name, t.trip.Flight.FlightNumber),
	}
	if duration := t.trip.Duration(); duration != "" {
		parts = append(parts, duration)
	}
	parts = append(parts, formatPrice(t.trip.Price))
	if seats := cabinSeats(t.trip, t.cabin); seats > 0 {
		parts = append(parts, fmt.Sprintf("%d %s seats", seats, t.cabin))
	} else {
		parts = append(parts, fmt.Sprintf("sold out in %s", t.cabin))
	}
	return strings.Join(parts, " • ")
}

func (t tripItem) FilterValue() string {
	return strings.ToLower(t.trip.Flight.Airline.Name + " " + t.trip.Flight.FlightNumber)
}

// tripSort selects the results ordering; ties fall back to departure time.
type tripSort int

const (
	sortByDeparture tripSort = iota
	sortByPrice
	sortByDuration
)

func (s tripSort) String() string {
	switch s {
	case sortByPrice:
		return "price"
	case sortByDuration:
		return "duration"
	default:
		return "departure"
	}
}

func (s tripSort) next() tripSort {
	switch s {
	case sortByDeparture:
		return sortByPrice
	case sortByPrice:
		return sortByDuration
	default:
		return sortByDeparture
	}
}

func buildTripItems(trips []model.Trip, cabin string, order tripSort) []list.Item {
	sorted := append([]model.Trip{}, trips...)
	sort.Slice(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		switch order {
		case sortByPrice:
			if a.Price != b.Price {
				return a.Price < b.Price
			}
		case sortByDuration:
			da := a.Arrival.Sub(a.Departure)
			db := b.Arrival.Sub(b.Departure)
			if da != db {
				return da < db
			}
		}
		return a.Departure.Before(b.Departure)
	})
	items := make([]list.Item, 0, len(sorted))
	for _, trip := range sorted {
		items = append(items, tripItem{trip: trip, cabin: cabin})
	}
	return items
}

func cabinSeats(trip model.Trip, cabin string) int {
	switch cabin {
	case model.CabinPremium:
		return trip.PremiumEconomySeats
	case model.CabinBusiness:
		return trip.BusinessSeats
	case model.CabinFirst:
		return trip.FirstSeats
	default:
		return trip.EconomySeats
	}
}

func formatPrice(price float64) string {
	if price < 0 {
		return "-"
	}
	return fmt.Sprintf("$%.2f", price)
}
