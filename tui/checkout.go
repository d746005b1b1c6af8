package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"skybook-cli/flow"
	"skybook-cli/model"
)

type fieldKind int

const (
	fieldPassenger fieldKind = iota
	fieldGender
	fieldContactEmail
	fieldContactPhone
	fieldCardNumber
	fieldCardHolder
	fieldExpiry
	fieldCVV
)

type checkoutField struct {
	kind           fieldKind
	label          string
	passengerIndex int
	passengerField flow.PassengerField
}

// checkoutModel is the presentation shell around a flow.Controller. All
// checkout semantics live in the controller; this model only maps key
// strokes to field edits and renders what the controller holds.
type checkoutModel struct {
	flow   *flow.Controller
	fields []checkoutField
	inputs []textinput.Model
	focus  int

	note       string
	submitting bool
}

func newCheckout(f *flow.Controller) *checkoutModel {
	c := &checkoutModel{flow: f}
	c.rebuildFields()
	return c
}

// rebuildFields lays the form out from the controller state: one block per
// passenger, the contact block, or the payment block once the flow has
// moved on.
func (c *checkoutModel) rebuildFields() {
	focusLabel := ""
	if c.focus >= 0 && c.focus < len(c.fields) {
		focusLabel = fieldKey(c.fields[c.focus])
	}

	var fields []checkoutField
	if c.flow.Step() == flow.StepPayment {
		fields = []checkoutField{
			{kind: fieldCardNumber, label: "Card number"},
			{kind: fieldCardHolder, label: "Cardholder name"},
			{kind: fieldExpiry, label: "Expiry (MM/YY)"},
			{kind: fieldCVV, label: "CVV"},
		}
	} else {
		for i := range c.flow.Passengers() {
			fields = append(fields,
				checkoutField{kind: fieldPassenger, label: "First name", passengerIndex: i, passengerField: flow.FieldFirstName},
				checkoutField{kind: fieldPassenger, label: "Last name", passengerIndex: i, passengerField: flow.FieldLastName},
				checkoutField{kind: fieldPassenger, label: "Email (optional)", passengerIndex: i, passengerField: flow.FieldEmail},
				checkoutField{kind: fieldPassenger, label: "Date of birth (YYYY-MM-DD)", passengerIndex: i, passengerField: flow.FieldDateOfBirth},
				checkoutField{kind: fieldGender, label: "Gender", passengerIndex: i},
			)
		}
		fields = append(fields,
			checkoutField{kind: fieldContactEmail, label: "Contact email"},
			checkoutField{kind: fieldContactPhone, label: "Contact phone"},
		)
	}

	inputs := make([]textinput.Model, len(fields))
	c.focus = 0
	for i, field := range fields {
		input := textinput.New()
		input.Prompt = ""
		input.CharLimit = 64
		switch field.kind {
		case fieldCardNumber:
			input.CharLimit = 19
			input.Placeholder = "1234 5678 9012 3456"
		case fieldExpiry:
			input.CharLimit = 5
			input.Placeholder = "MM/YY"
		case fieldCVV:
			input.CharLimit = 3
			input.EchoMode = textinput.EchoPassword
		}
		input.SetValue(c.fieldValue(field))
		input.CursorEnd()
		inputs[i] = input
		if fieldKey(field) == focusLabel {
			c.focus = i
		}
	}
	c.fields = fields
	c.inputs = inputs
}

func fieldKey(field checkoutField) string {
	return fmt.Sprintf("%d/%d/%d", field.kind, field.passengerIndex, field.passengerField)
}

func (c *checkoutModel) fieldValue(field checkoutField) string {
	switch field.kind {
	case fieldPassenger:
		passenger := c.flow.Passengers()[field.passengerIndex]
		switch field.passengerField {
		case flow.FieldFirstName:
			return passenger.FirstName
		case flow.FieldLastName:
			return passenger.LastName
		case flow.FieldEmail:
			return passenger.Email
		case flow.FieldDateOfBirth:
			return passenger.DateOfBirth
		}
	case fieldContactEmail:
		return c.flow.Contact().Email
	case fieldContactPhone:
		return c.flow.Contact().Phone
	case fieldCardNumber:
		return c.flow.Payment().CardNumber
	case fieldCardHolder:
		return c.flow.Payment().CardHolder
	case fieldExpiry:
		return c.flow.Payment().ExpiryDate
	case fieldCVV:
		return c.flow.Payment().CVV
	}
	return ""
}

func (c *checkoutModel) focusCmd() tea.Cmd {
	if len(c.inputs) == 0 {
		return nil
	}
	return c.inputs[c.focus].Focus()
}

// update maps one key stroke onto the form. The returned flag reports that
// the flow advanced to the payment step and the app state should follow.
func (c *checkoutModel) update(msg tea.KeyMsg) (tea.Cmd, bool) {
	if c.submitting {
		return nil, false
	}
	field := c.fields[c.focus]

	switch msg.String() {
	case "tab", "down":
		return c.moveFocus(1), false
	case "shift+tab", "up":
		return c.moveFocus(-1), false
	case "ctrl+a":
		if c.flow.Step() == flow.StepPassengers {
			if err := c.flow.AddPassenger(); err != nil {
				c.note = err.Error()
				return nil, false
			}
			c.note = ""
			c.rebuildFields()
			return c.focusCmd(), false
		}
		return nil, false
	case "left", "right":
		if field.kind == fieldGender {
			c.cycleGender(field.passengerIndex, msg.String() == "right")
			return nil, false
		}
	case "enter":
		if c.focus < len(c.fields)-1 {
			return c.moveFocus(1), false
		}
		return c.submitStep()
	}

	if field.kind == fieldGender {
		return nil, false
	}

	var cmd tea.Cmd
	c.inputs[c.focus], cmd = c.inputs[c.focus].Update(msg)
	c.applyField(field, c.inputs[c.focus].Value())

	// payment fields are reformatted as they are typed
	switch field.kind {
	case fieldCardNumber, fieldExpiry, fieldCVV:
		formatted := c.fieldValue(field)
		if formatted != c.inputs[c.focus].Value() {
			c.inputs[c.focus].SetValue(formatted)
			c.inputs[c.focus].CursorEnd()
		}
	}
	return cmd, false
}

func (c *checkoutModel) applyField(field checkoutField, value string) {
	switch field.kind {
	case fieldPassenger:
		_ = c.flow.SetPassengerField(field.passengerIndex, field.passengerField, value)
	case fieldContactEmail:
		c.flow.SetContactEmail(value)
	case fieldContactPhone:
		c.flow.SetContactPhone(value)
	case fieldCardNumber:
		c.flow.SetCardNumber(value)
	case fieldCardHolder:
		c.flow.SetCardHolder(value)
	case fieldExpiry:
		c.flow.SetExpiryDate(value)
	case fieldCVV:
		c.flow.SetCVV(value)
	}
}

func (c *checkoutModel) cycleGender(passengerIndex int, forward bool) {
	genders := model.Genders()
	current := c.flow.Passengers()[passengerIndex].Gender
	index := 0
	for i, gender := range genders {
		if gender == current {
			index = i
			break
		}
	}
	if forward {
		index = (index + 1) % len(genders)
	} else {
		index = (index - 1 + len(genders)) % len(genders)
	}
	_ = c.flow.SetPassengerField(passengerIndex, flow.FieldGender, genders[index])
}

func (c *checkoutModel) moveFocus(delta int) tea.Cmd {
	if len(c.inputs) == 0 {
		return nil
	}
	c.inputs[c.focus].Blur()
	c.focus = (c.focus + delta + len(c.fields)) % len(c.fields)
	return c.inputs[c.focus].Focus()
}

func (c *checkoutModel) submitStep() (tea.Cmd, bool) {
	if c.flow.Step() == flow.StepPassengers {
		if err := c.flow.ContinueToPayment(); err != nil {
			c.note = err.Error()
			return nil, false
		}
		c.note = ""
		c.rebuildFields()
		return c.focusCmd(), true
	}
	payment := c.flow.Payment()
	if payment.CardNumber == "" || payment.CardHolder == "" || payment.ExpiryDate == "" || payment.CVV == "" {
		c.note = "All payment fields are required."
		return nil, false
	}
	c.note = ""
	c.submitting = true
	return submitCmd(c.flow), false
}

func (c *checkoutModel) view(sp spinner.Model) string {
	step := c.flow.Step()
	title := fmt.Sprintf("Checkout • Step %d of 3 • %s", int(step), step)
	lines := []string{lipgloss.NewStyle().Bold(true).Render(title), ""}
	lines = append(lines, c.priceView(), "")

	labelStyle := lipgloss.NewStyle().Faint(true)
	focusStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("5")).Bold(true)

	passengerCount := len(c.flow.Passengers())
	for i, field := range c.fields {
		if field.kind == fieldPassenger && field.passengerField == flow.FieldFirstName {
			lines = append(lines, labelStyle.Render(fmt.Sprintf("-- Passenger %d of %d --", field.passengerIndex+1, passengerCount)))
		}
		if field.kind == fieldContactEmail {
			lines = append(lines, labelStyle.Render("-- Contact --"))
		}

		label := field.label
		if i == c.focus {
			label = focusStyle.Render("> " + label)
		} else {
			label = "  " + label
		}

		if field.kind == fieldGender {
			gender := c.flow.Passengers()[field.passengerIndex].Gender
			lines = append(lines, fmt.Sprintf("%s  ‹ %s ›", label, gender))
			continue
		}
		lines = append(lines, fmt.Sprintf("%s  %s", label, c.inputs[i].View()))
	}

	if c.submitting {
		lines = append(lines, "", fmt.Sprintf("%s Submitting booking...", sp.View()))
	}
	if c.note != "" {
		lines = append(lines, "", lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Render(c.note))
	}
	return strings.Join(lines, "\n")
}

func (c *checkoutModel) priceView() string {
	price, err := c.flow.Price()
	if err != nil {
		return hint("Fetching fares...")
	}
	return strings.Join([]string{
		fmt.Sprintf("Base price   %s", formatPrice(price.BasePrice)),
		fmt.Sprintf("Taxes (8%%)   %s", formatPrice(price.Tax)),
		fmt.Sprintf("Service fee  %s", formatPrice(price.ServiceFee)),
		lipgloss.NewStyle().Bold(true).Render(fmt.Sprintf("Total        %s", formatPrice(price.Total))),
	}, "\n")
}
