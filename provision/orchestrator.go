/*
	Web hosting account provisioning on a Plesk panel.

	Activation walks Init -> ClientCreated -> SubscriptionCreated -> Provisioned.  The linkage record
	is written right after each confirmed panel creation, so a run that dies half way leaves the
	customer id on file and the next run for the same service continues from it.  Known rejections
	(password policy, duplicate login) are remediated by changing the input and retrying, once per
	class and step.  A subscription that cannot be created rolls the customer back.
*/
package provision

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"

	"bitbucket.org/telmaxdc/webhosting-provision/linkdb"
	"bitbucket.org/telmaxdc/webhosting-provision/plesk"
	hostingprovision "bitbucket.org/telmaxdc/webhosting-provision/structs"
)

// PanelAPI is the part of *plesk.Client the orchestrator drives.
type PanelAPI interface {
	CreateClient(ctx context.Context, params plesk.Params) (plesk.Result, error)
	UpdateClient(ctx context.Context, params plesk.Params) (plesk.Result, error)
	DeleteClient(ctx context.Context, params plesk.Params) (plesk.Result, error)
	CreateSubscription(ctx context.Context, params plesk.Params) (plesk.Result, error)
	DeleteSubscription(ctx context.Context, params plesk.Params) (plesk.Result, error)
	ListIPAddresses(ctx context.Context) ([]plesk.IPAddress, error)
	FindServicePlan(ctx context.Context, name string) (int64, error)
}

// Notifier sends the welcome message of a freshly provisioned service.
type Notifier interface {
	SendWelcome(ctx context.Context, serviceID string) error
}

var (
	ErrNoSharedIP = errors.New("panel has no shared ip address")
	ErrNoLinkage  = errors.New("no panel account on file for this service")
	ErrFollowUp   = errors.New("service is flagged for manual follow up")
)

var (
	workflowsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "webhosting",
		Subsystem: "provision",
		Name:      "workflows_total",
		Help:      "Lifecycle runs by operation and final state.",
	}, []string{"operation", "state"})
	compensationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "webhosting",
		Subsystem: "provision",
		Name:      "compensations_total",
		Help:      "Customer rollbacks after a failed subscription, by result.",
	}, []string{"result"})
)

func init() {
	prometheus.MustRegister(workflowsTotal, compensationsTotal, remediationsTotal)
}

type Orchestrator struct {
	Panel    PanelAPI
	Store    linkdb.Store
	Notifier Notifier // optional
	PlanName string   // service plan new subscriptions are created on
}

func New(panel PanelAPI, store linkdb.Store, notifier Notifier, planName string) *Orchestrator {
	if planName == "" {
		planName = plesk.DefaultPlanName
	}
	return &Orchestrator{Panel: panel, Store: store, Notifier: notifier, PlanName: planName}
}

// Outcome is what a lifecycle run reports back to the host.
type Outcome struct {
	Success         bool
	State           State
	Reason          string
	Err             error
	AccountID       int64
	SubscriptionID  int64
	Username        string // customer login
	FTPLogin        string
	PasswordChanged bool
	Password        string    // the replacement password when PasswordChanged
	FollowUp        *FollowUp // set when the panel was left in a state an operator has to settle
}

// Result converts the outcome into the message published for the host.
func (o Outcome) Result(request hostingprovision.ProvisionRequest) hostingprovision.ProvisionResult {
	return hostingprovision.ProvisionResult{
		RequestID:      request.RequestID,
		ServiceID:      request.ServiceID,
		RequestType:    request.RequestType,
		Success:        o.Success,
		State:          o.State.String(),
		AccountID:      o.AccountID,
		SubscriptionID: o.SubscriptionID,
		Username:       o.Username,
		FTPLogin:       o.FTPLogin,
		Password:       o.Password,
		Time:           time.Now(),
		Result:         o.Reason,
	}
}

// Handle dispatches a lifecycle request to its entry point.
func (o *Orchestrator) Handle(ctx context.Context, request hostingprovision.ProvisionRequest) Outcome {
	if err := request.CheckValid(); err != nil {
		return Outcome{State: Failed, Reason: err.Error(), Err: err}
	}
	c := NewContext(request)
	switch request.RequestType {
	case hostingprovision.RequestActivate:
		return o.OnActivate(ctx, c)
	case hostingprovision.RequestReactivate:
		return o.OnReactivate(ctx, c)
	case hostingprovision.RequestDeactivate:
		return o.OnDeactivate(ctx, c)
	default:
		return o.OnTerminate(ctx, c)
	}
}

// OnActivate creates the panel customer and subscription for a service.
func (o *Orchestrator) OnActivate(ctx context.Context, c *Context) (out Outcome) {
	defer func() { workflowsTotal.WithLabelValues("activate", out.State.String()).Inc() }()
	logger := log.WithField("service_id", c.ServiceID)

	if err := o.load(ctx, c); err != nil {
		return o.fail(c, "reading linkage", err)
	}
	if c.Linkage.NeedsFollowUp() {
		return o.fail(c, "checking linkage", fmt.Errorf("%w: %s", ErrFollowUp, c.Linkage.FollowUp))
	}
	switch {
	case c.Linkage.HasSubscription():
		c.State = Provisioned
		logger.Infof("Already provisioned as customer %d subscription %d", c.AccountID(), c.SubscriptionID())
		return o.done(c, "already provisioned")
	case c.Linkage.HasAccount():
		c.State = ClientCreated
		logger.Infof("Customer %d on file, continuing with the subscription", c.AccountID())
	}

	if err := o.prerequisites(ctx, c); err != nil {
		return o.fail(c, "prerequisites", err)
	}

	if c.State == Init {
		if err := o.createClient(ctx, c); err != nil {
			if c.State == ClientCreated {
				// created but the checkpoint failed
				o.compensate(ctx, c)
			}
			return o.fail(c, "creating customer", err)
		}
	}

	if err := o.createSubscription(ctx, c); err != nil {
		o.compensate(ctx, c)
		return o.fail(c, "creating subscription", err)
	}

	o.notify(ctx, c)
	c.State = Provisioned
	logger.Infof("Provisioned customer %d subscription %d", c.AccountID(), c.SubscriptionID())
	if c.FollowUp != nil {
		return o.done(c, "provisioned, needs follow up: "+c.FollowUp.Detail)
	}
	return o.done(c, "provisioned")
}

// load replaces the context's linkage with the stored one, adopting a stored username.
func (o *Orchestrator) load(ctx context.Context, c *Context) error {
	linkage, err := o.Store.ReadLinkage(ctx, c.ServiceID)
	if err != nil {
		return err
	}
	linkage.ServiceID = c.ServiceID
	c.Linkage = linkage
	if linkage.Username != "" {
		c.Username = linkage.Username
	}
	return nil
}

func (o *Orchestrator) prerequisites(ctx context.Context, c *Context) error {
	ips, err := o.Panel.ListIPAddresses(ctx)
	if err != nil {
		return err
	}
	ip, ok := plesk.SharedIP(ips)
	if !ok {
		return ErrNoSharedIP
	}
	c.IP = ip

	if c.PlanID, err = o.Panel.FindServicePlan(ctx, o.PlanName); err != nil {
		return err
	}
	if c.FTPPassword == "" {
		c.FTPPassword = newFTPPassword()
	}
	log.WithField("service_id", c.ServiceID).Debugf("Using ip %s and plan %d", c.IP, c.PlanID)
	return nil
}

func (o *Orchestrator) createClient(ctx context.Context, c *Context) error {
	result, err := drive(c, plesk.CreateClient.Name, CustomerRules, func() (plesk.Result, error) {
		return o.Panel.CreateClient(ctx, c.customerParams())
	})
	if err != nil {
		return err
	}
	id, ok := result.ID()
	if !ok || id <= 0 {
		return fmt.Errorf("%s returned no customer id", plesk.CreateClient.Name)
	}
	c.State = ClientCreated
	c.Linkage.AccountID = id
	c.Linkage.Username = c.Username
	c.Linkage.IP = c.IP
	log.WithField("service_id", c.ServiceID).Infof("Created customer %d with login %s", id, c.Username)
	return o.checkpoint(ctx, c)
}

func (o *Orchestrator) createSubscription(ctx context.Context, c *Context) error {
	if c.FTPLogin == "" {
		c.FTPLogin = c.Username
	}
	result, err := drive(c, plesk.CreateSubscription.Name, SubscriptionRules, func() (plesk.Result, error) {
		return o.Panel.CreateSubscription(ctx, c.subscriptionParams())
	})
	if err != nil {
		return err
	}
	c.State = SubscriptionCreated
	c.Linkage.Username = c.Username
	c.Linkage.IP = c.IP
	if id, ok := result.ID(); ok && id > 0 {
		c.Linkage.SubscriptionID = id
	} else {
		detail := fmt.Sprintf("%s for customer %d returned non numeric id %q, subscription %s has to be linked by hand",
			plesk.CreateSubscription.Name, c.AccountID(), result.String("id"), c.Hostname)
		log.WithField("service_id", c.ServiceID).Error(detail)
		c.Linkage.FollowUp = detail
		c.flag(UnknownSubscriptionID, detail)
	}
	return o.checkpoint(ctx, c)
}

func (o *Orchestrator) checkpoint(ctx context.Context, c *Context) error {
	c.Linkage.UpdatedAt = time.Now()
	if err := o.Store.PersistLinkage(ctx, c.Linkage); err != nil {
		return fmt.Errorf("persisting linkage: %w", err)
	}
	return nil
}

// compensate deletes the customer of a failed activation.  Its own failure is logged and never
// replaces the error that caused it.
func (o *Orchestrator) compensate(ctx context.Context, c *Context) {
	if c.AccountID() <= 0 {
		return
	}
	logger := log.WithFields(log.Fields{"service_id": c.ServiceID, "operation": plesk.DeleteClient.Name})
	if _, err := o.Panel.DeleteClient(ctx, plesk.Params{"id": c.AccountID()}); err != nil {
		compensationsTotal.WithLabelValues("failed").Inc()
		logger.Warnf("Could not roll back customer %d, left on file for follow up: %v", c.AccountID(), err)
		c.flag(RollbackFailed, fmt.Sprintf("customer %d (%s) could not be rolled back: %v", c.AccountID(), c.Username, err))
		return
	}
	compensationsTotal.WithLabelValues("ok").Inc()
	logger.Infof("Rolled back customer %d", c.AccountID())
	c.Linkage.AccountID = 0
	c.Linkage.SubscriptionID = 0
	c.Linkage.Username = ""
	if err := o.checkpoint(ctx, c); err != nil {
		logger.Warnf("Customer rolled back but linkage not cleared: %v", err)
	}
}

func (o *Orchestrator) notify(ctx context.Context, c *Context) {
	logger := log.WithField("service_id", c.ServiceID)
	if c.SubscriptionID() <= 0 {
		logger.Warn("No numeric subscription id, welcome message not sent")
		return
	}
	if o.Notifier == nil {
		return
	}
	if err := o.Notifier.SendWelcome(ctx, c.ServiceID); err != nil {
		logger.Warnf("Welcome message failed: %v", err)
	}
}

// OnReactivate re-enables the panel customer.
func (o *Orchestrator) OnReactivate(ctx context.Context, c *Context) Outcome {
	return o.setStatus(ctx, c, "reactivate", plesk.StatusActive)
}

// OnDeactivate suspends the panel customer.
func (o *Orchestrator) OnDeactivate(ctx context.Context, c *Context) Outcome {
	return o.setStatus(ctx, c, "deactivate", plesk.StatusDisabledByAdmin)
}

func (o *Orchestrator) setStatus(ctx context.Context, c *Context, operation string, status plesk.ObjectStatus) (out Outcome) {
	defer func() { workflowsTotal.WithLabelValues(operation, out.State.String()).Inc() }()
	if err := o.load(ctx, c); err != nil {
		return o.fail(c, "reading linkage", err)
	}
	c.State = stateOf(c.Linkage)
	if c.Username == "" {
		return o.fail(c, operation, ErrNoLinkage)
	}
	if _, err := o.Panel.UpdateClient(ctx, plesk.Params{"username": c.Username, "status": int(status)}); err != nil {
		return o.fail(c, operation, err)
	}
	log.WithField("service_id", c.ServiceID).Infof("Customer %s is now %s", c.Username, status)
	return o.done(c, "customer "+status.String())
}

// OnTerminate deletes the subscription and customer on file.  Panel failures are logged and
// reported in the reason, only a missing linkage fails the run.
func (o *Orchestrator) OnTerminate(ctx context.Context, c *Context) (out Outcome) {
	defer func() { workflowsTotal.WithLabelValues("terminate", out.State.String()).Inc() }()
	if err := o.load(ctx, c); err != nil {
		return o.fail(c, "reading linkage", err)
	}
	if !c.Linkage.HasSubscription() {
		return o.fail(c, "terminate", ErrNoLinkage)
	}
	logger := log.WithField("service_id", c.ServiceID)
	var problems []string
	if _, err := o.Panel.DeleteSubscription(ctx, plesk.Params{"id": c.SubscriptionID()}); err != nil {
		logger.Errorf("Problem deleting subscription %d: %v", c.SubscriptionID(), err)
		problems = append(problems, err.Error())
	} else {
		c.Linkage.SubscriptionID = 0
	}
	if c.Linkage.HasAccount() {
		if _, err := o.Panel.DeleteClient(ctx, plesk.Params{"id": c.AccountID()}); err != nil {
			logger.Errorf("Problem deleting customer %d: %v", c.AccountID(), err)
			problems = append(problems, err.Error())
		} else {
			c.Linkage.AccountID = 0
		}
	}
	if err := o.checkpoint(ctx, c); err != nil {
		logger.Errorf("Problem clearing linkage: %v", err)
		problems = append(problems, err.Error())
	}
	c.State = stateOf(c.Linkage)
	if len(problems) > 0 {
		return o.done(c, "terminated with errors: "+strings.Join(problems, "; "))
	}
	return o.done(c, "terminated")
}

func stateOf(l linkdb.Linkage) State {
	switch {
	case l.HasSubscription():
		return Provisioned
	case l.HasAccount():
		return ClientCreated
	}
	return Init
}

func (o *Orchestrator) done(c *Context, reason string) Outcome {
	return o.outcome(c, true, reason, nil)
}

func (o *Orchestrator) fail(c *Context, step string, err error) Outcome {
	c.State = Failed
	log.WithField("service_id", c.ServiceID).Errorf("Provisioning failed while %s: %v", step, err)
	return o.outcome(c, false, step+": "+err.Error(), err)
}

func (o *Orchestrator) outcome(c *Context, success bool, reason string, err error) Outcome {
	out := Outcome{
		Success:         success,
		State:           c.State,
		Reason:          reason,
		Err:             err,
		AccountID:       c.AccountID(),
		SubscriptionID:  c.SubscriptionID(),
		Username:        c.Username,
		FTPLogin:        c.FTPLogin,
		PasswordChanged: c.PasswordChanged,
		FollowUp:        c.FollowUp,
	}
	if c.PasswordChanged {
		out.Password = c.Password
	}
	return out
}
