package console

import (
	"errors"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
)

// Handler turns one input line into one block of output.
type Handler struct {
	store *Store
}

func NewHandler(s *Store) *Handler {
	return &Handler{store: s}
}

// Execute runs line and returns the text to print. exit is true when the
// user asked to leave.
func (h *Handler) Execute(line string) (out string, exit bool) {
	cmd, args := parseCommand(line)

	switch cmd {
	case "":
		return "", false
	case "add":
		return h.add(args), false
	case "list", "l":
		return formatList(h.store.List()), false
	case "complete":
		return h.complete(args), false
	case "update":
		return h.update(args), false
	case "delete":
		return h.delete(args), false
	case "help":
		return helpText, false
	case "exit", "quit":
		return goodbyeText, true
	default:
		return formatUnknown(cmd), false
	}
}

func parseCommand(line string) (string, string) {
	line = strings.TrimSpace(line)
	if line == "" {
		return "", ""
	}
	cmd, args, _ := strings.Cut(line, " ")
	return strings.ToLower(cmd), strings.TrimSpace(args)
}

// add accepts "<title>" or "<title> | <description>".
func (h *Handler) add(args string) string {
	title, rest, found := strings.Cut(args, "|")
	var description *string
	if found {
		description = &rest
	}

	t, err := h.store.Add(title, description)
	if err != nil {
		return errorText(err)
	}
	return formatAdded(t)
}

func (h *Handler) complete(args string) string {
	id, ok := parseID(args)
	if !ok {
		return formatError("Please provide a valid task ID")
	}

	t, err := h.store.Toggle(id)
	if err != nil {
		return errorText(err)
	}
	return formatToggled(t)
}

// update accepts "<id> title <value>" or "<id> desc <value>".
func (h *Handler) update(args string) string {
	idText, rest, _ := strings.Cut(args, " ")
	field, value, _ := strings.Cut(strings.TrimSpace(rest), " ")
	value = strings.TrimSpace(value)
	if value == "" {
		return formatError(updateUsage)
	}
	id, ok := parseID(idText)
	if !ok {
		return formatError(updateUsage)
	}

	switch strings.ToLower(field) {
	case "title":
		t, err := h.store.Update(id, &value, nil)
		if err != nil {
			return errorText(err)
		}
		return formatTitleUpdated(t)
	case "desc":
		if _, err := h.store.Update(id, nil, &value); err != nil {
			return errorText(err)
		}
		return formatDescriptionUpdated(id)
	default:
		return formatError(updateUsage)
	}
}

func (h *Handler) delete(args string) string {
	id, ok := parseID(args)
	if !ok {
		return formatError("Please provide a valid task ID")
	}

	if err := h.store.Delete(id); err != nil {
		return errorText(err)
	}
	return formatDeleted(id)
}

func parseID(s string) (int64, bool) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	return id, err == nil
}

func errorText(err error) string {
	if errors.Is(err, common.ErrorValidation) {
		msg, _ := strings.CutPrefix(err.Error(), common.ErrorValidation.Error()+": ")
		return formatError(msg)
	}
	return formatError(err.Error())
}
