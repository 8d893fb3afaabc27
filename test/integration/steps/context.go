//go:build integration

// Package steps provides step definitions for BDD integration tests.
package steps

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"time"

	"github.com/cucumber/godog"
	"github.com/gin-gonic/gin"

	"github.com/household-hub/companion/config"
	"github.com/household-hub/companion/internal/infra/dependency"
	"github.com/household-hub/companion/internal/integration/adapters"
	"github.com/household-hub/companion/internal/integration/notify"
	"github.com/household-hub/companion/internal/integration/notify/templates"
	"github.com/household-hub/companion/internal/integration/persistence"
	"github.com/household-hub/companion/internal/integration/persistence/model"
	"github.com/household-hub/companion/internal/integration/remote"
	"github.com/household-hub/companion/internal/refbackend"
	"github.com/household-hub/companion/test/integration/mock"
)

const (
	testJWTSecret     = "test-jwt-secret-key-for-testing-purposes"
	testPassword      = "password123"
	householdAddress  = "household@home.test"
	notificationWait  = 2 * time.Second
	backendCallTimeout = 2 * time.Second
)

// environment holds the servers shared by every scenario.
type environment struct {
	cfg       *config.Config
	db        *mock.Db
	redis     *mock.Redis
	backend   *mock.ApiMock
	users     *persistence.UserRepository
	injector  *dependency.Injector
	companion *httptest.Server
	sender    *notify.MockSender
	queue     *notify.Queue
}

var (
	envOnce sync.Once
	env     *environment
)

func sharedEnvironment() *environment {
	envOnce.Do(func() {
		gin.SetMode(gin.TestMode)

		db := mock.NewDb(map[string]any{
			"users":          &model.UserModel{},
			"shopping_lists": &model.ShoppingListModel{},
			"shopping_items": &model.ShoppingItemModel{},
		})

		// Reference backend behind a failure-injecting proxy
		users := persistence.NewUserRepository(db.DbConn)
		backendServer := refbackend.NewServer(
			users,
			persistence.NewShoppingListRepository(db.DbConn),
			persistence.NewShoppingItemRepository(db.DbConn),
			adapters.NewTokenService(testJWTSecret, refbackend.Issuer),
			time.Hour,
		)
		backend := mock.NewApiServer(backendServer.Router())
		backend.Start()

		// Notifications are rendered for real and captured by the mock sender
		renderer, err := templates.NewRenderer()
		if err != nil {
			panic(err)
		}
		sender := notify.NewMockSender()
		queue := notify.NewQueue(
			notify.NewEmailNotifier(sender, renderer, householdAddress),
			notify.QueueConfig{
				PollInterval: 10 * time.Millisecond,
				BatchSize:    10,
				MaxAttempts:  3,
				Capacity:     64,
			},
		)

		cfg := config.Load()
		cfg.Server.Environment = "test"
		cfg.Remote.BaseURL = backend.GetUrl()
		cfg.Remote.CallTimeout = backendCallTimeout
		cfg.JWT.Secret = testJWTSecret
		cfg.Notify.Timeout = notificationWait

		redis := mock.NewRedis()
		injector := dependency.NewInjector(cfg, redis.Client, &http.Client{Timeout: 5 * time.Second}, queue)
		companion := httptest.NewServer(injector.Router.Setup("test"))

		env = &environment{
			cfg:       cfg,
			db:        db,
			redis:     redis,
			backend:   backend,
			users:     users,
			injector:  injector,
			companion: companion,
			sender:    sender,
			queue:     queue,
		}
	})
	return env
}

type response struct {
	status int
	body   any
	raw    []byte
}

// testContext holds the state of one scenario.
type testContext struct {
	*environment

	client      *http.Client
	headers     map[string]string
	accessToken string
	response    *response

	userIDs    map[string]int64
	listIDs    map[string]int64
	listOwners map[string]string
	itemIDs    map[string]int64
	backendAs  map[string]*remote.Client
}

func (t *testContext) before() error {
	t.environment = sharedEnvironment()
	t.client = &http.Client{Timeout: 10 * time.Second}
	t.headers = make(map[string]string)
	t.accessToken = ""
	t.response = nil
	t.userIDs = make(map[string]int64)
	t.listIDs = make(map[string]int64)
	t.listOwners = make(map[string]string)
	t.itemIDs = make(map[string]int64)
	t.backendAs = make(map[string]*remote.Client)

	t.injector.Registry.CloseAll()
	t.backend.Reset()
	t.queue.ProcessNow(context.Background())
	t.sender.Reset()

	if err := t.db.ClearDB(); err != nil {
		return err
	}
	return mock.ClearRedis(t.redis)
}

// InitializeTestSuite sets up resources before any scenarios run.
func InitializeTestSuite(ctx *godog.TestSuiteContext) {
	ctx.BeforeSuite(func() {
		sharedEnvironment()
	})

	ctx.AfterSuite(func() {
		if env == nil {
			return
		}
		env.injector.Registry.CloseAll()
		env.companion.Close()
		env.backend.Close()
	})
}

// InitializeScenario registers all step definitions.
func InitializeScenario(ctx *godog.ScenarioContext) {
	test := &testContext{}

	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		return ctx, test.before()
	})

	// Background steps
	ctx.Given(`^the companion API is running$`, test.theCompanionAPIIsRunning)

	// Household setup steps
	ctx.Given(`^a household member "([^"]*)" with role "([^"]*)" in home (\d+)$`, test.aHouseholdMemberWithRoleInHome)
	ctx.Given(`^"([^"]*)" has a shopping list "([^"]*)" in home (\d+)$`, test.hasAShoppingListInHome)
	ctx.Given(`^the list "([^"]*)" has an item "([^"]*)" with quantity "([^"]*)" and unit price "([^"]*)"$`, test.theListHasAnItem)
	ctx.Given(`^the list "([^"]*)" is already completed$`, test.theListIsAlreadyCompleted)

	// Session steps
	ctx.Given(`^I am logged in as "([^"]*)"$`, test.iAmLoggedInAs)
	ctx.Given(`^my session expires$`, test.mySessionExpires)

	// Backend steps
	ctx.Given(`^the backend fails "([^"]*)" requests to "([^"]*)" with status (\d+) and message "([^"]*)"$`, test.theBackendFails)
	ctx.Given(`^the backend recovers$`, test.theBackendRecovers)

	// Header steps
	ctx.Given(`^the header is empty$`, test.theHeaderIsEmpty)
	ctx.Given(`^the header contains the key "([^"]*)" with "([^"]*)"$`, test.theHeaderContainsTheKeyWith)

	// Request steps
	ctx.When(`^I send a "([^"]*)" request to "([^"]*)"$`, test.iSendARequestTo)
	ctx.When(`^I send a "([^"]*)" request to "([^"]*)" with body:$`, test.iSendARequestToWithBody)

	// Response assertion steps
	ctx.Then(`^the response status should be (\d+)$`, test.theResponseStatusShouldBe)
	ctx.Then(`^the response should be JSON$`, test.theResponseShouldBeJSON)
	ctx.Then(`^the response should contain "([^"]*)"$`, test.theResponseShouldContain)
	ctx.Then(`^the response field "([^"]*)" should be "([^"]*)"$`, test.theResponseFieldShouldBe)
	ctx.Then(`^the response field "([^"]*)" should exist$`, test.theResponseFieldShouldExist)
	ctx.Then(`^the response field "([^"]*)" should have (\d+) entries$`, test.theResponseFieldShouldHaveEntries)
	ctx.Then(`^the response should have (\d+) entries$`, test.theResponseShouldHaveEntries)

	// Side effect assertion steps
	ctx.Then(`^the household should receive an e-mail about the completed list "([^"]*)"$`, test.theHouseholdShouldReceiveAnEmailAbout)
	ctx.Then(`^no e-mail should be sent$`, test.noEmailShouldBeSent)
	ctx.Then(`^the backend should have received (\d+) "([^"]*)" requests? to "([^"]*)"$`, test.theBackendShouldHaveReceived)
	ctx.Then(`^the backend request "([^"]*)" "([^"]*)" should carry a request id$`, test.theBackendRequestShouldCarryARequestID)
	ctx.Then(`^the db should contain (\d+) objects in the "([^"]*)" table$`, test.theDbShouldContainObjectsInTheTable)
	ctx.Then(`^no session should remain$`, test.noSessionShouldRemain)
}
