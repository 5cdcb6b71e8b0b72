// Package bot implements the conversation state machine for the Messenger
// lead-qualification funnel.
package bot

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/TuniLagunero/phirst-bot/internal/alerts"
	"github.com/TuniLagunero/phirst-bot/internal/catalog"
	"github.com/TuniLagunero/phirst-bot/internal/finance"
	"github.com/TuniLagunero/phirst-bot/internal/leads"
	"github.com/TuniLagunero/phirst-bot/internal/messenger"
	"github.com/TuniLagunero/phirst-bot/pkg/logging"
)

// resetCommand is the case-insensitive backdoor that unsticks an escalated
// conversation.
const resetCommand = "reset bot"

// commentTriggers are scanned, lowercased, against page comments.
var commentTriggers = []string{"hm", "how much", "price", "details", "interested", "avail"}

// Assistant is the AI fallback collaborator.
type Assistant interface {
	Reply(ctx context.Context, userText string) (string, error)
}

// Engine consumes one inbound event at a time and drives the funnel.
type Engine struct {
	leads   leads.Repository
	catalog catalog.Repository
	gateway messenger.Gateway
	alerts  *alerts.Dispatcher
	ai      Assistant
	fincfg  finance.Config
	pageID  string
	aiFail  string
	logger  *logging.Logger
	now     func() time.Time

	qrRoutes       []payloadRoute
	postbackRoutes []payloadRoute
}

// Config wires the engine's collaborators.
type Config struct {
	Leads           leads.Repository
	Catalog         catalog.Repository
	Gateway         messenger.Gateway
	Alerts          *alerts.Dispatcher
	AI              Assistant
	Finance         finance.Config
	PageID          string
	AIFallbackReply string
	Logger          *logging.Logger
}

// payloadRoute maps a payload prefix to its handler. The house-id suffix, if
// any, is passed through as arg.
type payloadRoute struct {
	prefix string
	exact  bool
	fn     func(ctx context.Context, lead *leads.Lead, evt *messenger.MessagingEvent, arg string) error
}

// NewEngine builds a state machine over the given collaborators.
func NewEngine(cfg Config) *Engine {
	if cfg.Logger == nil {
		cfg.Logger = logging.Default()
	}
	if cfg.AIFallbackReply == "" {
		cfg.AIFallbackReply = "Pasensya na, busy lang ang system. Type 'house' para sa models o 'start' para mag-simula uli."
	}
	e := &Engine{
		leads:   cfg.Leads,
		catalog: cfg.Catalog,
		gateway: cfg.Gateway,
		alerts:  cfg.Alerts,
		ai:      cfg.AI,
		fincfg:  cfg.Finance,
		pageID:  cfg.PageID,
		aiFail:  cfg.AIFallbackReply,
		logger:  cfg.Logger,
		now:     time.Now,
	}
	e.qrRoutes = []payloadRoute{
		{prefix: "CALC_BANK_", fn: e.handleCalcBank},
		{prefix: "CALC_PAGIBIG_", fn: e.handleCalcPagibig},
		{prefix: "CALC_CASH_", fn: e.handleCalcCash},
		{prefix: "BUDGET_", fn: e.handleBudget},
		{prefix: "FIN_", fn: e.handleFinancing},
		{prefix: "TIME_", fn: e.handleTimeline},
	}
	e.postbackRoutes = []payloadRoute{
		{prefix: "COMPUTE_", fn: e.handleCompute},
		{prefix: "VIEW_MODELS", exact: true, fn: e.handleViewModels},
		{prefix: "TALK_TO_AGENT", exact: true, fn: e.handleTalkToAgent},
		{prefix: "CHAT_WITH_AGENT", exact: true, fn: e.handleTalkToAgent},
		{prefix: "RESERVE_", fn: e.handleReserve},
		{prefix: "SCHEDULE_TRIPPING_", fn: e.handleScheduleTripping},
	}
	return e
}

// SetClock overrides the time source in tests.
func (e *Engine) SetClock(now func() time.Time) {
	e.now = now
}

// HandleMessaging processes one inbound message or postback event. Errors
// are for the caller's logs only; the webhook acknowledgment never depends
// on them.
func (e *Engine) HandleMessaging(ctx context.Context, evt *messenger.MessagingEvent) error {
	if evt.Message != nil && evt.Message.IsEcho {
		return nil
	}
	psid := evt.Sender.ID
	if psid == "" {
		return errors.New("bot: event without sender id")
	}

	lead, err := e.leads.GetOrCreateByPSID(ctx, psid)
	if err != nil {
		return err
	}

	e.backfillName(ctx, lead)

	text := eventText(evt)
	lower := strings.ToLower(strings.TrimSpace(text))

	// "Get started" always wins, even over an escalated conversation.
	if pb := eventPostback(evt); pb == "GET_STARTED" || pb == "START_CHATTING" {
		return e.restartFunnel(ctx, lead)
	}

	if lead.Status.Escalated() {
		return e.handleEscalated(ctx, lead, text, lower)
	}

	return e.handleFunnel(ctx, lead, evt, text, lower)
}

// handleEscalated is the gatekeeper for HOT/WARM leads: a human agent owns
// or is about to own this conversation.
func (e *Engine) handleEscalated(ctx context.Context, lead *leads.Lead, text, lower string) error {
	if lower == resetCommand {
		lead.Status = leads.StatusCold
		lead.CurrentStep = leads.StepStart
		if err := e.leads.Update(ctx, lead); err != nil {
			return err
		}
		e.sendText(ctx, lead.PSID, resetConfirmation)
		return nil
	}

	if lead.CurrentStep != leads.StepCompleted {
		if IsPHMobile(text) {
			return e.capturePhone(ctx, lead, strings.TrimSpace(text))
		}
		if strings.TrimSpace(text) != "" {
			e.sendText(ctx, lead.PSID, invalidPhonePrompt)
		}
		return nil
	}

	// Funnel finished and escalated: total silence so the bot never talks
	// over the human agent.
	return nil
}

// capturePhone stores the number, alerts the operator (cooldown-gated),
// confirms to the user, and hands the thread to the agent inbox.
func (e *Engine) capturePhone(ctx context.Context, lead *leads.Lead, phone string) error {
	lead.PhoneNumber = phone
	lead.CurrentStep = leads.StepCompleted
	intent := alerts.IntentFor(lead.Status)

	houseName := e.interestedHouseName(ctx, lead)
	if e.alerts != nil {
		e.alerts.PhoneCaptured(ctx, lead, intent, houseName, phone)
	}
	if err := e.leads.Update(ctx, lead); err != nil {
		return err
	}

	e.sendText(ctx, lead.PSID, phoneSavedMessage(string(intent)))
	if err := e.gateway.PassThreadControl(ctx, lead.PSID); err != nil {
		e.logger.Error("handover failed", "psid", lead.PSID, "error", err)
	}
	return nil
}

// handleFunnel runs the normal scripted flow for a COLD lead.
func (e *Engine) handleFunnel(ctx context.Context, lead *leads.Lead, evt *messenger.MessagingEvent, text, lower string) error {
	if e.rejectBareAttachment(ctx, lead, evt) {
		return nil
	}

	// Phone numbers short-circuit from any funnel point.
	if IsPHMobile(text) {
		return e.capturePhone(ctx, lead, strings.TrimSpace(text))
	}

	if qr := eventQuickReply(evt); qr != "" {
		for _, route := range e.qrRoutes {
			if route.matches(qr) {
				return route.fn(ctx, lead, evt, strings.TrimPrefix(qr, route.prefix))
			}
		}
		// Unrecognized payload from a stale message. Outside the enforced
		// steps it gets a silent ack, never the AI fallback; inside them it
		// falls through to the re-prompt below.
		if !lead.CurrentStep.MidFunnel() {
			return nil
		}
	}

	// Mid-funnel enforcement: free text (or an unrecognized payload) at a
	// step that expects a button tap re-issues the step's prompt. Menu
	// shortcuts are exempt and fall through to postback handling.
	if lead.CurrentStep.MidFunnel() && !isMenuShortcut(eventPostback(evt)) {
		return e.reissuePrompt(ctx, lead)
	}

	if evt.Message != nil {
		switch {
		case lower == "start" || lower == "hello" || lower == "hi":
			return e.restartFunnel(ctx, lead)
		case strings.Contains(lower, "house"):
			return e.sendHouseListing(ctx, lead.PSID, "")
		default:
			return e.handleFreeText(ctx, lead, text)
		}
	}

	if pb := eventPostback(evt); pb != "" {
		for _, route := range e.postbackRoutes {
			if route.matches(pb) {
				return route.fn(ctx, lead, evt, strings.TrimPrefix(pb, route.prefix))
			}
		}
	}
	return nil
}

// handleFreeText tries a media-intent match before falling back to the AI
// assistant.
func (e *Engine) handleFreeText(ctx context.Context, lead *leads.Lead, text string) error {
	if kind := detectMediaIntent(text); kind != mediaNone {
		houses, err := e.catalog.ActiveHouses(ctx, "", 10)
		if err != nil {
			e.logger.Error("house lookup for media intent failed", "error", err)
		} else if house := matchHouseByName(text, houses); house != nil {
			return e.serveMedia(ctx, lead.PSID, house, text, kind)
		}
	}

	reply := e.aiFail
	if e.ai != nil {
		if aiReply, err := e.ai.Reply(ctx, text); err != nil {
			e.logger.Error("ai fallback failed", "error", err)
		} else {
			reply = aiReply
		}
	}
	e.sendText(ctx, lead.PSID, reply)
	return nil
}

func (e *Engine) serveMedia(ctx context.Context, psid string, house *catalog.House, text string, kind mediaKind) error {
	if kind == mediaTour || kind == mediaVideo {
		if link := mediaLink(house, kind); link != "" {
			e.sendText(ctx, psid, "Heto ang virtual tour ng "+house.Name+": "+link)
			return nil
		}
	}
	images := mediaImages(house, text, 3)
	if len(images) == 0 {
		e.sendText(ctx, psid, "Pasensya na, wala pa akong photos ng "+house.Name+". Type 'house' para sa models.")
		return nil
	}
	for _, img := range images {
		if err := e.gateway.SendImage(ctx, psid, img); err != nil {
			e.logger.Error("image send failed", "psid", psid, "error", err)
		}
	}
	return nil
}

// restartFunnel resets to the top of the script and asks the budget question.
func (e *Engine) restartFunnel(ctx context.Context, lead *leads.Lead) error {
	lead.Status = leads.StatusCold
	lead.CurrentStep = leads.StepAskedBudget
	if err := e.leads.Update(ctx, lead); err != nil {
		return err
	}
	e.sendQuickReplies(ctx, lead.PSID, budgetPromptText(lead.FirstName()), budgetOptions())
	return nil
}

// reissuePrompt repeats the current step's question without advancing.
func (e *Engine) reissuePrompt(ctx context.Context, lead *leads.Lead) error {
	switch lead.CurrentStep {
	case leads.StepAskedBudget:
		e.sendQuickReplies(ctx, lead.PSID, budgetPromptText(lead.FirstName()), budgetOptions())
	case leads.StepAskedFinancing:
		e.sendQuickReplies(ctx, lead.PSID, financingPromptText, financingOptions())
	case leads.StepAskedTimeline:
		e.sendQuickReplies(ctx, lead.PSID, timelinePromptText, timelineOptions())
	default:
		e.sendText(ctx, lead.PSID, tapOptionPrompt)
	}
	return nil
}

// --- quick-reply handlers ---

func (e *Engine) handleCalcBank(ctx context.Context, lead *leads.Lead, _ *messenger.MessagingEvent, arg string) error {
	house, promo, err := e.houseWithPromo(ctx, lead.PSID, arg)
	if err != nil || house == nil {
		return err
	}
	plan := finance.BankPlan(e.fincfg, house.Pricing(), promoDiscount(promo))
	e.sendButtonTemplate(ctx, lead.PSID, renderBankPlan(house.Name, plan, promo), computationButtons(house.ID))
	return nil
}

func (e *Engine) handleCalcPagibig(ctx context.Context, lead *leads.Lead, _ *messenger.MessagingEvent, arg string) error {
	house, promo, err := e.houseWithPromo(ctx, lead.PSID, arg)
	if err != nil || house == nil {
		return err
	}
	plan := finance.PagibigPlan(e.fincfg, house.Pricing(), promoDiscount(promo))
	e.sendButtonTemplate(ctx, lead.PSID, renderPagibigPlan(house.Name, plan, promo), computationButtons(house.ID))
	return nil
}

func (e *Engine) handleCalcCash(ctx context.Context, lead *leads.Lead, _ *messenger.MessagingEvent, arg string) error {
	// Cash buyers signal reservation-level intent.
	lead.Status = leads.StatusHot
	if err := e.leads.Update(ctx, lead); err != nil {
		return err
	}
	house, promo, err := e.houseWithPromo(ctx, lead.PSID, arg)
	if err != nil || house == nil {
		return err
	}
	quote := finance.CashPlanQuote(house.Pricing(), promoDiscount(promo))
	e.sendButtonTemplate(ctx, lead.PSID, renderCashQuote(house.Name, quote), computationButtons(house.ID))
	return nil
}

func (e *Engine) handleBudget(ctx context.Context, lead *leads.Lead, evt *messenger.MessagingEvent, _ string) error {
	lead.BudgetRange = eventText(evt)
	// The location question was retired; the funnel goes straight to financing.
	lead.CurrentStep = leads.StepAskedFinancing
	if err := e.leads.Update(ctx, lead); err != nil {
		return err
	}
	e.sendQuickReplies(ctx, lead.PSID, financingPromptText, financingOptions())
	return nil
}

func (e *Engine) handleFinancing(ctx context.Context, lead *leads.Lead, evt *messenger.MessagingEvent, arg string) error {
	switch arg {
	case "BANK":
		lead.FinancingType = leads.FinancingBank
	case "CASH":
		lead.FinancingType = leads.FinancingCash
	case "PAGIBIG":
		lead.FinancingType = leads.FinancingPagibig
	}
	lead.CurrentStep = leads.StepAskedTimeline
	if err := e.leads.Update(ctx, lead); err != nil {
		return err
	}
	e.sendQuickReplies(ctx, lead.PSID, timelinePromptText, timelineOptions())
	return nil
}

func (e *Engine) handleTimeline(ctx context.Context, lead *leads.Lead, evt *messenger.MessagingEvent, _ string) error {
	lead.Timeline = eventText(evt)
	lead.CurrentStep = leads.StepCompleted
	if err := e.leads.Update(ctx, lead); err != nil {
		return err
	}
	e.sendText(ctx, lead.PSID, listingHeader)
	return e.sendHouseListing(ctx, lead.PSID, lead.LocationPref)
}

// --- postback handlers ---

func (e *Engine) handleCompute(ctx context.Context, lead *leads.Lead, _ *messenger.MessagingEvent, arg string) error {
	house, err := e.houseByArg(ctx, lead.PSID, arg)
	if err != nil || house == nil {
		return err
	}
	e.sendQuickReplies(ctx, lead.PSID, askFinancingText(house.Name), calcOptions(house.ID))
	return nil
}

func (e *Engine) handleViewModels(ctx context.Context, lead *leads.Lead, _ *messenger.MessagingEvent, _ string) error {
	return e.sendHouseListing(ctx, lead.PSID, "")
}

func (e *Engine) handleTalkToAgent(ctx context.Context, lead *leads.Lead, _ *messenger.MessagingEvent, _ string) error {
	lead.Status = leads.StatusWarm
	if err := e.leads.Update(ctx, lead); err != nil {
		return err
	}
	if e.alerts != nil {
		e.alerts.AgentRequested(ctx, lead, "User clicked 'Talk to Agent' in the menu.")
	}
	e.sendText(ctx, lead.PSID, agentWaitMessage)
	if err := e.gateway.PassThreadControl(ctx, lead.PSID); err != nil {
		e.logger.Error("handover failed", "psid", lead.PSID, "error", err)
	}
	return nil
}

func (e *Engine) handleReserve(ctx context.Context, lead *leads.Lead, _ *messenger.MessagingEvent, arg string) error {
	house, err := e.houseByArg(ctx, lead.PSID, arg)
	if err != nil || house == nil {
		return err
	}
	lead.InterestedHouseID = &house.ID
	lead.Status = leads.StatusHot
	lead.CurrentStep = leads.StepAskedPhone
	if err := e.leads.Update(ctx, lead); err != nil {
		return err
	}
	e.sendText(ctx, lead.PSID, reservePrompt(house.Name))
	return nil
}

func (e *Engine) handleScheduleTripping(ctx context.Context, lead *leads.Lead, _ *messenger.MessagingEvent, arg string) error {
	house, err := e.houseByArg(ctx, lead.PSID, arg)
	if err != nil || house == nil {
		return err
	}
	lead.InterestedHouseID = &house.ID
	lead.Status = leads.StatusWarm
	lead.CurrentStep = leads.StepAskedPhone
	if err := e.leads.Update(ctx, lead); err != nil {
		return err
	}
	e.sendText(ctx, lead.PSID, trippingPrompt(house.Name))
	return nil
}

// HandleComment scans a page comment for buying intent and nudges the
// commenter to their inbox.
func (e *Engine) HandleComment(ctx context.Context, change *messenger.Change) error {
	value := change.Value
	if value.Item != "comment" || value.Verb != "add" {
		return nil
	}
	if value.From.ID == "" || value.From.ID == e.pageID {
		return nil
	}
	lower := strings.ToLower(value.Message)
	for _, trigger := range commentTriggers {
		if strings.Contains(lower, trigger) {
			e.sendText(ctx, value.From.ID, "Hi! I sent you a PM about our house models and prices. Check your inbox! 😊")
			return nil
		}
	}
	return nil
}

// --- helpers ---

func (r payloadRoute) matches(payload string) bool {
	if r.exact {
		return payload == r.prefix
	}
	return strings.HasPrefix(payload, r.prefix)
}

func isMenuShortcut(postback string) bool {
	return postback == "VIEW_MODELS" || postback == "TALK_TO_AGENT"
}

func eventText(evt *messenger.MessagingEvent) string {
	if evt.Message != nil {
		return strings.TrimSpace(evt.Message.Text)
	}
	return ""
}

func eventQuickReply(evt *messenger.MessagingEvent) string {
	if evt.Message != nil && evt.Message.QuickReply != nil {
		return evt.Message.QuickReply.Payload
	}
	return ""
}

func eventPostback(evt *messenger.MessagingEvent) string {
	if evt.Postback != nil {
		return evt.Postback.Payload
	}
	return ""
}

// rejectBareAttachment replies to image/sticker-only messages and reports
// whether processing should stop.
func (e *Engine) rejectBareAttachment(ctx context.Context, lead *leads.Lead, evt *messenger.MessagingEvent) bool {
	if evt.Message == nil || len(evt.Message.Attachments) == 0 || strings.TrimSpace(evt.Message.Text) != "" {
		return false
	}
	e.sendText(ctx, lead.PSID, attachmentNotice)
	return true
}

// backfillName fetches the subscriber's name once, best effort. The name is
// never overwritten once set.
func (e *Engine) backfillName(ctx context.Context, lead *leads.Lead) {
	if lead.FullName != "" {
		return
	}
	profile, err := e.gateway.GetProfile(ctx, lead.PSID)
	if err != nil {
		e.logger.Warn("profile lookup failed", "psid", lead.PSID, "error", err)
		return
	}
	name := profile.FullName()
	if name == "" {
		return
	}
	lead.FullName = name
	if err := e.leads.Update(ctx, lead); err != nil {
		e.logger.Error("persisting backfilled name failed", "psid", lead.PSID, "error", err)
	}
}

func (e *Engine) interestedHouseName(ctx context.Context, lead *leads.Lead) string {
	if lead.InterestedHouseID == nil {
		return ""
	}
	house, err := e.catalog.GetHouse(ctx, *lead.InterestedHouseID)
	if err != nil {
		e.logger.Warn("interested house lookup failed", "house_id", *lead.InterestedHouseID, "error", err)
		return ""
	}
	return house.Name
}

// houseByArg resolves a house id payload suffix, replying with a generic
// system error when it cannot.
func (e *Engine) houseByArg(ctx context.Context, psid, arg string) (*catalog.House, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		e.sendText(ctx, psid, systemErrorMessage)
		return nil, nil
	}
	house, err := e.catalog.GetHouse(ctx, id)
	if err != nil {
		if errors.Is(err, catalog.ErrHouseNotFound) {
			e.sendText(ctx, psid, systemErrorMessage)
			return nil, nil
		}
		return nil, err
	}
	return house, nil
}

func (e *Engine) houseWithPromo(ctx context.Context, psid, arg string) (*catalog.House, *catalog.Promo, error) {
	house, err := e.houseByArg(ctx, psid, arg)
	if err != nil || house == nil {
		return nil, nil, err
	}
	promo, err := e.catalog.ActivePromo(ctx, house.ID, e.now().UTC())
	if err != nil && !errors.Is(err, catalog.ErrNoActivePromo) {
		e.logger.Warn("promo lookup failed", "house_id", house.ID, "error", err)
	}
	return house, promo, nil
}

func promoDiscount(promo *catalog.Promo) float64 {
	if promo == nil {
		return 0
	}
	return promo.DiscountAmount
}

// sendHouseListing sends the carousel of active houses, optionally filtered
// by the lead's location preference.
func (e *Engine) sendHouseListing(ctx context.Context, psid, location string) error {
	houses, err := e.catalog.ActiveHouses(ctx, location, 10)
	if err != nil {
		return err
	}
	if len(houses) == 0 {
		e.sendText(ctx, psid, noUnitsMessage(location))
		return nil
	}
	on := e.now().UTC()
	elements := make([]messenger.Element, 0, len(houses))
	for _, h := range houses {
		promo, err := e.catalog.ActivePromo(ctx, h.ID, on)
		if err != nil && !errors.Is(err, catalog.ErrNoActivePromo) {
			e.logger.Warn("promo lookup failed", "house_id", h.ID, "error", err)
		}
		est := finance.EstimatedMonthly(e.fincfg, h.Pricing(), promoDiscount(promo))
		elements = append(elements, houseElement(h, est))
	}
	if err := e.gateway.SendGenericTemplate(ctx, psid, elements); err != nil {
		e.logger.Error("carousel send failed", "psid", psid, "error", err)
	}
	return nil
}

// Outbound send wrappers: delivery failures degrade to logs, never to the
// user or the webhook acknowledgment.

func (e *Engine) sendText(ctx context.Context, psid, text string) {
	if err := e.gateway.SendText(ctx, psid, text); err != nil {
		e.logger.Error("text send failed", "psid", psid, "error", err)
	}
}

func (e *Engine) sendQuickReplies(ctx context.Context, psid, text string, options []messenger.QuickReply) {
	if err := e.gateway.SendQuickReplies(ctx, psid, text, options); err != nil {
		e.logger.Error("quick-reply send failed", "psid", psid, "error", err)
	}
}

func (e *Engine) sendButtonTemplate(ctx context.Context, psid, text string, buttons []messenger.Button) {
	if err := e.gateway.SendButtonTemplate(ctx, psid, text, buttons); err != nil {
		e.logger.Error("button-template send failed", "psid", psid, "error", err)
	}
}
