package nodes

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"sensor-collector/core/dispatch"
	"sensor-collector/core/sensor"
	"sensor-collector/core/storage"
	"sensor-collector/core/storage/mocks"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupTestApp(t *testing.T) (*fiber.App, *mocks.Client, *dispatch.Dispatcher) {
	t.Helper()
	app := fiber.New()
	mockClient := new(mocks.Client)
	dispatcher := dispatch.New(zap.NewNop())
	svc := NewService(mockClient, dispatcher, "test-bucket", zap.NewNop())
	NewHandler(svc).RegisterRoutes(app)
	return app, mockClient, dispatcher
}

func decodeBody(t *testing.T, r io.Reader) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.NewDecoder(r).Decode(&body))
	return body
}

func TestHandleSubmitNode(t *testing.T) {
	t.Run("Accepted", func(t *testing.T) {
		app, mockClient, dispatcher := setupTestApp(t)
		mockClient.On("SaveNode", mock.Anything, "test-bucket", mock.MatchedBy(func(n *sensor.Node) bool {
			return n.NodeName == "gateway" && n.NodeType == sensor.TypeHead
		})).Return(nil)

		req := httptest.NewRequest("POST", "/nodes", strings.NewReader(`{"nodeName":"gateway"}`))
		req.Header.Set("Content-Type", "application/json")
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusAccepted, resp.StatusCode)

		body := decodeBody(t, resp.Body)
		assert.Equal(t, "accepted", body["status"])
		_, err = uuid.Parse(body["uuid"].(string))
		assert.NoError(t, err)

		dispatcher.Wait()
		mockClient.AssertExpectations(t)
	})

	t.Run("KeepsClientUUIDAndRelations", func(t *testing.T) {
		app, mockClient, _ := setupTestApp(t)
		id := uuid.NewString()
		payload := `{"uuid":"` + id + `","nodeName":"gateway","nodeType":"head",
			"connectedNodes":{"nodeMate":{"nodeName":"backup"},"childrenNodes":[{"nodeName":"probe"}]}}`

		var saved *sensor.Node
		mockClient.On("SaveNode", mock.Anything, "test-bucket", mock.Anything).
			Run(func(args mock.Arguments) { saved = args.Get(2).(*sensor.Node) }).
			Return(nil)

		resp, err := app.Test(httptest.NewRequest("POST", "/nodes?wait=true", strings.NewReader(payload)))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusCreated, resp.StatusCode)
		assert.Equal(t, id, decodeBody(t, resp.Body)["uuid"])

		require.NotNil(t, saved)
		assert.Equal(t, id, saved.UUID())
		require.NotNil(t, saved.Mate())
		assert.Equal(t, sensor.TypeMate, saved.Mate().NodeType)
		assert.NotEmpty(t, saved.Mate().UUID())
		require.Len(t, saved.Children(), 1)
		assert.Equal(t, sensor.TypeChild, saved.Children()[0].NodeType)
		assert.NotEmpty(t, saved.Children()[0].UUID())
	})

	t.Run("WaitReportsStorageFailure", func(t *testing.T) {
		app, mockClient, _ := setupTestApp(t)
		mockClient.On("SaveNode", mock.Anything, "test-bucket", mock.Anything).
			Return(&storage.OperationError{Provider: storage.ProviderMinio, Operation: storage.OpSaveNode, Err: errors.New("refused")})

		resp, err := app.Test(httptest.NewRequest("POST", "/nodes?wait=true", strings.NewReader(`{"nodeName":"x"}`)))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadGateway, resp.StatusCode)
		assert.Contains(t, decodeBody(t, resp.Body)["error"], "storage operation failed")
	})

	t.Run("InvalidPayload", func(t *testing.T) {
		app, mockClient, _ := setupTestApp(t)

		resp, err := app.Test(httptest.NewRequest("POST", "/nodes", strings.NewReader(`{"nodeName":`)))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
		mockClient.AssertNotCalled(t, "SaveNode", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("EmptyBody", func(t *testing.T) {
		app, _, _ := setupTestApp(t)

		resp, err := app.Test(httptest.NewRequest("POST", "/nodes", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	})
}

func TestHandleSubmitNode_RejectsMalformedNodes(t *testing.T) {
	id := uuid.NewString()

	tests := []struct {
		name    string
		payload string
		detail  string
	}{
		{"NullChild", `{"nodeName":"g","connectedNodes":{"childrenNodes":[null]}}`, "childrenNodes[0]"},
		{"NullChildAfterValid", `{"nodeName":"g","connectedNodes":{"childrenNodes":[{"nodeName":"c"},null]}}`, "childrenNodes[1]"},
		{"PathInUUID", `{"uuid":"../../other/evil","nodeName":"g"}`, "invalid node uuid"},
		{"BracedUUID", `{"uuid":"{` + id + `}","nodeName":"g"}`, "invalid node uuid"},
		{"MateUUID", `{"nodeName":"g","connectedNodes":{"nodeMate":{"uuid":"mate/../x","nodeName":"m"}}}`, "nodeMate"},
		{"ChildUUID", `{"nodeName":"g","connectedNodes":{"childrenNodes":[{"uuid":"x.json","nodeName":"c"}]}}`, "childrenNodes[0]"},
		{"Grandchild", `{"nodeName":"g","connectedNodes":{"childrenNodes":[{"nodeName":"c","connectedNodes":{"childrenNodes":[{"nodeName":"gc"}]}}]}}`, "cannot have connections"},
		{"MateWithMate", `{"nodeName":"g","connectedNodes":{"nodeMate":{"nodeName":"m","connectedNodes":{"nodeMate":{"nodeName":"mm"}}}}}`, "cannot have connections"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app, mockClient, _ := setupTestApp(t)

			resp, err := app.Test(httptest.NewRequest("POST", "/nodes?wait=true", strings.NewReader(tt.payload)))
			require.NoError(t, err)
			assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

			body := decodeBody(t, resp.Body)
			assert.Equal(t, "invalid node", body["error"])
			assert.Contains(t, body["details"], tt.detail)
			mockClient.AssertNotCalled(t, "SaveNode", mock.Anything, mock.Anything, mock.Anything)
		})
	}

	t.Run("NullMateMeansNoMate", func(t *testing.T) {
		app, mockClient, _ := setupTestApp(t)
		mockClient.On("SaveNode", mock.Anything, "test-bucket", mock.MatchedBy(func(n *sensor.Node) bool {
			return n.Mate() == nil
		})).Return(nil)

		resp, err := app.Test(httptest.NewRequest("POST", "/nodes?wait=true",
			strings.NewReader(`{"nodeName":"g","connectedNodes":{"nodeMate":null}}`)))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusCreated, resp.StatusCode)
		mockClient.AssertExpectations(t)
	})
}

func TestHandleUploadImage(t *testing.T) {
	t.Run("Accepted", func(t *testing.T) {
		app, mockClient, dispatcher := setupTestApp(t)
		id := uuid.NewString()
		data := []byte{0x89, 'P', 'N', 'G', 0x0d, 0x0a}

		mockClient.On("UploadImage", mock.Anything, "test-bucket", mock.MatchedBy(func(n *sensor.Node) bool {
			return n.UUID() == id
		}), "png", data).Return(nil)

		resp, err := app.Test(httptest.NewRequest("POST", "/nodes/"+id+"/images", bytes.NewReader(data)))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusAccepted, resp.StatusCode)

		dispatcher.Wait()
		mockClient.AssertExpectations(t)
	})

	t.Run("DeclaredType", func(t *testing.T) {
		app, mockClient, _ := setupTestApp(t)
		id := uuid.NewString()

		mockClient.On("UploadImage", mock.Anything, "test-bucket", mock.Anything, "jpg", []byte("jpeg")).Return(nil)

		resp, err := app.Test(httptest.NewRequest("POST", "/nodes/"+id+"/images?type=jpg&wait=true", strings.NewReader("jpeg")))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusCreated, resp.StatusCode)
		mockClient.AssertExpectations(t)
	})

	t.Run("InvalidUUID", func(t *testing.T) {
		app, _, _ := setupTestApp(t)

		resp, err := app.Test(httptest.NewRequest("POST", "/nodes/not-a-uuid/images", strings.NewReader("x")))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	})

	t.Run("EmptyBody", func(t *testing.T) {
		app, _, _ := setupTestApp(t)

		resp, err := app.Test(httptest.NewRequest("POST", "/nodes/"+uuid.NewString()+"/images", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	})

	t.Run("WaitReportsStorageFailure", func(t *testing.T) {
		app, mockClient, _ := setupTestApp(t)
		mockClient.On("UploadImage", mock.Anything, "test-bucket", mock.Anything, "png", mock.Anything).
			Return(errors.New("bucket missing"))

		resp, err := app.Test(httptest.NewRequest("POST", "/nodes/"+uuid.NewString()+"/images?wait=true", strings.NewReader("x")))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadGateway, resp.StatusCode)
	})
}
