package nodes

import (
	"encoding/json"

	"sensor-collector/core/logger"
	"sensor-collector/core/sensor"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for node submission.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the node routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/nodes")
	group.Post("/", h.HandleSubmitNode)
	group.Post("/:uuid/images", h.HandleUploadImage)
}

// HandleSubmitNode stores a node record.
// @Summary Submit Node
// @Description Saves a sensor node (with its mate and children) to object storage. The write runs in the background unless wait=true.
// @Tags nodes
// @Accept json
// @Produce json
// @Param wait query boolean false "Wait for the storage write to finish"
// @Success 201 {object} map[string]string "Saved"
// @Success 202 {object} map[string]string "Accepted"
// @Failure 400 {object} map[string]string "Bad Request"
// @Failure 502 {object} map[string]string "Storage Failure"
// @Router /nodes [post]
func (h *Handler) HandleSubmitNode(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	if len(c.Body()) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "empty body"})
	}

	var node sensor.Node
	if err := json.Unmarshal(c.Body(), &node); err != nil {
		l.Warn("Invalid node payload", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid node payload", "details": err.Error()})
	}
	if err := prepare(&node); err != nil {
		l.Warn("Rejected node payload", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid node", "details": err.Error()})
	}

	task := h.service.Submit(c.UserContext(), &node)
	l.Info("Node submitted", zap.String("uuid", node.UUID()))

	if c.QueryBool("wait") {
		if err := task.Wait(c.UserContext()); err != nil {
			return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": err.Error(), "uuid": node.UUID()})
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"status": "saved", "uuid": node.UUID()})
	}
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"status": "accepted", "uuid": node.UUID()})
}

// HandleUploadImage stores an image for a node.
// @Summary Upload Node Image
// @Description Uploads the raw request body as an image of the node. Stored with content type image/png.
// @Tags nodes
// @Accept octet-stream
// @Produce json
// @Param uuid path string true "Node UUID"
// @Param type query string false "Image type (file extension)" default(png)
// @Param wait query boolean false "Wait for the storage write to finish"
// @Success 201 {object} map[string]string "Saved"
// @Success 202 {object} map[string]string "Accepted"
// @Failure 400 {object} map[string]string "Bad Request"
// @Failure 502 {object} map[string]string "Storage Failure"
// @Router /nodes/{uuid}/images [post]
func (h *Handler) HandleUploadImage(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	node, err := sensor.ParseRef(c.Params("uuid"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if len(c.Body()) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "empty body"})
	}

	// Request buffers are reused by fasthttp once the handler returns.
	data := append([]byte(nil), c.Body()...)
	imageType := utils.CopyString(c.Query("type", "png"))

	task := h.service.AttachImage(c.UserContext(), node, imageType, data)
	l.Info("Image submitted",
		zap.String("uuid", node.UUID()),
		zap.String("image_type", imageType),
		zap.Int("bytes", len(data)),
	)

	if c.QueryBool("wait") {
		if err := task.Wait(c.UserContext()); err != nil {
			return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": err.Error(), "uuid": node.UUID()})
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"status": "saved", "uuid": node.UUID()})
	}
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"status": "accepted", "uuid": node.UUID()})
}

// prepare assigns identifiers and relation types the client left out, then
// validates the result.
func prepare(node *sensor.Node) error {
	if node.UUID() == "" {
		node.RegenerateUUID()
	}
	if node.NodeType == "" {
		node.NodeType = sensor.TypeHead
	}
	if m := node.Mate(); m != nil {
		if m.UUID() == "" {
			m.RegenerateUUID()
		}
		m.NodeType = sensor.TypeMate
	}
	for _, child := range node.Children() {
		// Null entries are reported by Validate.
		if child == nil {
			continue
		}
		if child.UUID() == "" {
			child.RegenerateUUID()
		}
		child.NodeType = sensor.TypeChild
	}
	return node.Validate()
}
