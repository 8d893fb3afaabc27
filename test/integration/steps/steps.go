//go:build integration

package steps

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/cucumber/godog"
	"github.com/shopspring/decimal"

	"github.com/household-hub/companion/config"
	"github.com/household-hub/companion/internal/domain/entity"
	"github.com/household-hub/companion/internal/integration/remote"
	"github.com/household-hub/companion/internal/refbackend"
)

var placeholderPattern = regexp.MustCompile(`\{(list|item):([^}]+)\}`)

func (t *testContext) theCompanionAPIIsRunning() error {
	resp, err := t.client.Get(t.companion.URL + "/health")
	if err != nil {
		return fmt.Errorf("companion is not reachable: %w", err)
	}
	resp.Body.Close()
	return nil
}

func (t *testContext) aHouseholdMemberWithRoleInHome(email, role string, homeID int64) error {
	err := refbackend.Seed(context.Background(), t.users, config.SeedConfig{
		Email:    email,
		Password: testPassword,
		Name:     strings.Split(email, "@")[0],
		Role:     role,
		HomeID:   homeID,
	})
	if err != nil {
		return err
	}

	user, err := t.users.FindByEmail(context.Background(), email)
	if err != nil {
		return err
	}
	t.userIDs[email] = user.ID
	return nil
}

// backendClient returns a backend client authenticated as the given user.
func (t *testContext) backendClient(email string) (*remote.Client, error) {
	if client, ok := t.backendAs[email]; ok {
		return client, nil
	}

	client := remote.NewClient(t.backend.GetUrl(), &http.Client{Timeout: 5 * time.Second}, 5*time.Second)
	profile, err := client.Login(context.Background(), email, testPassword)
	if err != nil {
		return nil, fmt.Errorf("backend login as %s failed: %w", email, err)
	}

	client = client.WithToken(profile.Token)
	t.backendAs[email] = client
	return client, nil
}

func (t *testContext) hasAShoppingListInHome(email, title string, homeID int64) error {
	client, err := t.backendClient(email)
	if err != nil {
		return err
	}

	list, err := client.CreateList(context.Background(), entity.ShoppingList{
		Title:   title,
		HomeID:  homeID,
		OwnerID: t.userIDs[email],
	})
	if err != nil {
		return err
	}

	t.listIDs[title] = *list.ID
	t.listOwners[title] = email
	return nil
}

func (t *testContext) theListHasAnItem(title, description, quantity, unitPrice string) error {
	listID, ok := t.listIDs[title]
	if !ok {
		return fmt.Errorf("unknown list %q", title)
	}
	client, err := t.backendClient(t.listOwners[title])
	if err != nil {
		return err
	}

	qty, err := decimal.NewFromString(quantity)
	if err != nil {
		return err
	}
	price, err := decimal.NewFromString(unitPrice)
	if err != nil {
		return err
	}

	item, err := client.CreateItem(context.Background(), *entity.NewShoppingItem(listID, description, qty, price, 0))
	if err != nil {
		return err
	}
	t.itemIDs[description] = *item.ID
	return nil
}

func (t *testContext) theListIsAlreadyCompleted(title string) error {
	listID, ok := t.listIDs[title]
	if !ok {
		return fmt.Errorf("unknown list %q", title)
	}
	client, err := t.backendClient(t.listOwners[title])
	if err != nil {
		return err
	}

	completed := time.Now().UTC()
	_, err = client.UpdateList(context.Background(), listID, entity.ShoppingList{
		Title:       title,
		CompletedAt: &completed,
	})
	return err
}

func (t *testContext) iAmLoggedInAs(email string) error {
	body, _ := json.Marshal(map[string]string{"email": email, "password": testPassword})
	if err := t.executeRequest(http.MethodPost, "/api/v1/auth/login", body); err != nil {
		return err
	}
	if t.response.status != http.StatusOK {
		return fmt.Errorf("login failed with status %d: %s", t.response.status, string(t.response.raw))
	}

	token, ok := getFieldValue(t.response.body, "access_token").(string)
	if !ok || token == "" {
		return fmt.Errorf("login response has no access token: %s", string(t.response.raw))
	}
	t.accessToken = token
	t.response = nil
	return nil
}

func (t *testContext) mySessionExpires() error {
	t.redis.Server.FastForward(t.cfg.JWT.AccessTokenExpiry + time.Minute)
	return nil
}

func (t *testContext) theBackendFails(method, path string, status int, message string) error {
	t.backend.SetFailure(method, t.replacePlaceholders(path), status, message)
	return nil
}

func (t *testContext) theBackendRecovers() error {
	t.backend.ClearFailures()
	return nil
}

func (t *testContext) theHeaderIsEmpty() error {
	t.headers = make(map[string]string)
	return nil
}

func (t *testContext) theHeaderContainsTheKeyWith(key, value string) error {
	t.headers[key] = value
	return nil
}

func (t *testContext) iSendARequestTo(method, path string) error {
	return t.executeRequest(method, t.replacePlaceholders(path), nil)
}

func (t *testContext) iSendARequestToWithBody(method, path string, body *godog.DocString) error {
	return t.executeRequest(method, t.replacePlaceholders(path), []byte(t.replacePlaceholders(body.Content)))
}

// replacePlaceholders substitutes {list:Title} and {item:Description} with stored ids.
func (t *testContext) replacePlaceholders(content string) string {
	return placeholderPattern.ReplaceAllStringFunc(content, func(match string) string {
		parts := placeholderPattern.FindStringSubmatch(match)
		ids := t.listIDs
		if parts[1] == "item" {
			ids = t.itemIDs
		}
		if id, ok := ids[parts[2]]; ok {
			return strconv.FormatInt(id, 10)
		}
		return match
	})
}

func (t *testContext) executeRequest(method, path string, payload []byte) error {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequest(method, t.companion.URL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for key, value := range t.headers {
		req.Header.Set(key, value)
	}
	if t.accessToken != "" && req.Header.Get("Authorization") == "" {
		req.Header.Set("Authorization", "Bearer "+t.accessToken)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	var body any
	if len(raw) > 0 {
		_ = json.Unmarshal(raw, &body)
	}

	t.response = &response{
		status: resp.StatusCode,
		body:   body,
		raw:    raw,
	}
	return nil
}

func (t *testContext) requireResponse() error {
	if t.response == nil {
		return fmt.Errorf("no response received")
	}
	return nil
}

func (t *testContext) theResponseStatusShouldBe(expectedStatus int) error {
	if err := t.requireResponse(); err != nil {
		return err
	}
	if t.response.status != expectedStatus {
		return fmt.Errorf("expected status %d, got %d. Body: %s", expectedStatus, t.response.status, string(t.response.raw))
	}
	return nil
}

func (t *testContext) theResponseShouldBeJSON() error {
	if err := t.requireResponse(); err != nil {
		return err
	}
	var js json.RawMessage
	if err := json.Unmarshal(t.response.raw, &js); err != nil {
		return fmt.Errorf("response is not valid JSON: %w", err)
	}
	return nil
}

func (t *testContext) theResponseShouldContain(expected string) error {
	if err := t.requireResponse(); err != nil {
		return err
	}
	if !strings.Contains(string(t.response.raw), t.replacePlaceholders(expected)) {
		return fmt.Errorf("response does not contain '%s'. Body: %s", expected, string(t.response.raw))
	}
	return nil
}

func (t *testContext) theResponseFieldShouldBe(field, expectedValue string) error {
	if err := t.requireResponse(); err != nil {
		return err
	}

	value := getFieldValue(t.response.body, field)
	if value == nil {
		return fmt.Errorf("field '%s' not found in response: %s", field, string(t.response.raw))
	}

	actual := fmt.Sprintf("%v", value)
	expected := t.replacePlaceholders(expectedValue)
	if actual != expected {
		return fmt.Errorf("field '%s' expected '%s', got '%s'", field, expected, actual)
	}
	return nil
}

func (t *testContext) theResponseFieldShouldExist(field string) error {
	if err := t.requireResponse(); err != nil {
		return err
	}
	if getFieldValue(t.response.body, field) == nil {
		return fmt.Errorf("field '%s' not found in response: %s", field, string(t.response.raw))
	}
	return nil
}

func (t *testContext) theResponseFieldShouldHaveEntries(field string, quantity int) error {
	if err := t.requireResponse(); err != nil {
		return err
	}
	return countEntries(getFieldValue(t.response.body, field), field, quantity)
}

func (t *testContext) theResponseShouldHaveEntries(quantity int) error {
	if err := t.requireResponse(); err != nil {
		return err
	}
	return countEntries(t.response.body, "response", quantity)
}

func countEntries(value any, field string, quantity int) error {
	if value == nil {
		if quantity == 0 {
			return nil
		}
		return fmt.Errorf("field '%s' is empty, expected %d entries", field, quantity)
	}

	v := reflect.ValueOf(value)
	if v.Kind() != reflect.Slice {
		return fmt.Errorf("field '%s' is not a list", field)
	}
	if v.Len() != quantity {
		return fmt.Errorf("field '%s' has %d entries, expected %d", field, v.Len(), quantity)
	}
	return nil
}

// getFieldValue walks a dot separated path through decoded JSON; numeric segments index lists.
func getFieldValue(object any, dotSeparatedField string) any {
	current := object
	for _, part := range strings.Split(dotSeparatedField, ".") {
		switch node := current.(type) {
		case map[string]any:
			value, ok := node[part]
			if !ok {
				return nil
			}
			current = value
		case []any:
			index, err := strconv.Atoi(part)
			if err != nil || index < 0 || index >= len(node) {
				return nil
			}
			current = node[index]
		default:
			return nil
		}
	}
	return current
}

func (t *testContext) theHouseholdShouldReceiveAnEmailAbout(title string) error {
	subject := fmt.Sprintf("Shopping list %q completed", title)
	deadline := time.Now().Add(notificationWait)
	for time.Now().Before(deadline) {
		t.queue.ProcessNow(context.Background())
		for _, msg := range t.sender.Sent() {
			if msg.Subject == subject {
				if msg.To != householdAddress {
					return fmt.Errorf("e-mail sent to %s, expected %s", msg.To, householdAddress)
				}
				return nil
			}
		}
		time.Sleep(20 * time.Millisecond)
	}

	sent := make([]string, 0)
	for _, msg := range t.sender.Sent() {
		sent = append(sent, msg.Subject)
	}
	return fmt.Errorf("no e-mail with subject %q, sent: %v", subject, sent)
}

func (t *testContext) noEmailShouldBeSent() error {
	t.queue.ProcessNow(context.Background())
	if sent := t.sender.Sent(); len(sent) > 0 {
		return fmt.Errorf("expected no e-mail, got %d", len(sent))
	}
	return nil
}

func (t *testContext) theBackendShouldHaveReceived(quantity int, method, path string) error {
	count := t.backend.CountRequests(method, t.replacePlaceholders(path))
	if count != quantity {
		return fmt.Errorf("backend received %d %s requests to %s, expected %d", count, method, path, quantity)
	}
	return nil
}

func (t *testContext) theBackendRequestShouldCarryARequestID(method, path string) error {
	headers := t.backend.GetRequestHeaders(method, t.replacePlaceholders(path), 0)
	if headers == nil {
		return fmt.Errorf("backend received no %s request to %s", method, path)
	}
	if headers[http.CanonicalHeaderKey(remote.RequestIDHeader)] == "" {
		return fmt.Errorf("request to %s carried no %s header", path, remote.RequestIDHeader)
	}
	return nil
}

func (t *testContext) theDbShouldContainObjectsInTheTable(quantity int, table string) error {
	count, err := t.db.Count(table)
	if err != nil {
		return err
	}
	if count != int64(quantity) {
		return fmt.Errorf("expected %d objects in %s, got %d", quantity, table, count)
	}
	return nil
}

func (t *testContext) noSessionShouldRemain() error {
	keys, err := t.redis.Keys("session:*")
	if err != nil {
		return err
	}
	if len(keys) > 0 {
		return fmt.Errorf("expected no session, found %v", keys)
	}
	return nil
}
