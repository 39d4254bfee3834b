package utils

import "github.com/gofiber/fiber/v2"

// JSONDoc writes the success envelope used by the admin dashboard.
func JSONDoc(c *fiber.Ctx, status int, doc interface{}) error {
	return c.Status(status).JSON(fiber.Map{"success": true, "doc": doc})
}

func JSONError(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(fiber.Map{"error": msg})
}
