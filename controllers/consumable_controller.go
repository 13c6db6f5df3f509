package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"ShopMaint_Backend/db"
	"ShopMaint_Backend/models"
)

// GET /api/consumables
// optional: ?below_minimum=true
func ListConsumables(c *gin.Context) {
	var items []models.Consumable
	if err := db.GetDB().Order("name ASC").Find(&items).Error; err != nil {
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}
	if c.Query("below_minimum") == "true" {
		filtered := items[:0]
		for _, item := range items {
			if item.BelowMinimum() {
				filtered = append(filtered, item)
			}
		}
		items = filtered
	}
	respondOK(c, http.StatusOK, items)
}

// GET /api/consumables/:id
func GetConsumable(c *gin.Context) {
	var item models.Consumable
	if err := db.GetDB().First(&item, "id = ?", c.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, http.StatusNotFound, "consumable not found")
			return
		}
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}
	respondOK(c, http.StatusOK, item)
}

// POST /api/consumables
func CreateConsumable(c *gin.Context) {
	var body models.Consumable
	if err := c.ShouldBindJSON(&body); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}
	if body.Name == "" || body.ArticleNumber == "" {
		respondError(c, http.StatusBadRequest, "name and article_number are required")
		return
	}
	if err := db.GetDB().Create(&body).Error; err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}
	respondOK(c, http.StatusCreated, body)
}

// PUT /api/consumables/:id
func UpdateConsumable(c *gin.Context) {
	type updateDTO struct {
		Name            *string  `json:"name"`
		StockQuantity   *float64 `json:"stock_quantity"`
		MinimumQuantity *float64 `json:"minimum_quantity"`
		Unit            *string  `json:"unit"`
		StorageLocation *string  `json:"storage_location"`
		Supplier        *string  `json:"supplier"`
		Notes           *string  `json:"notes"`
	}
	var req updateDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	var item models.Consumable
	if err := db.GetDB().First(&item, "id = ?", c.Param("id")).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, http.StatusNotFound, "consumable not found")
			return
		}
		respondError(c, http.StatusInternalServerError, err.Error())
		return
	}

	changes := map[string]any{}
	if req.Name != nil {
		changes["name"] = *req.Name
	}
	if req.StockQuantity != nil {
		changes["stock_quantity"] = *req.StockQuantity
	}
	if req.MinimumQuantity != nil {
		changes["minimum_quantity"] = *req.MinimumQuantity
	}
	if req.Unit != nil {
		changes["unit"] = *req.Unit
	}
	if req.StorageLocation != nil {
		changes["storage_location"] = *req.StorageLocation
	}
	if req.Supplier != nil {
		changes["supplier"] = *req.Supplier
	}
	if req.Notes != nil {
		changes["notes"] = *req.Notes
	}
	if len(changes) == 0 {
		respondError(c, http.StatusBadRequest, "no fields to update")
		return
	}

	if err := db.GetDB().Model(&item).Updates(changes).Error; err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}
	if err := db.GetDB().First(&item, "id = ?", c.Param("id")).Error; err == nil {
		respondOK(c, http.StatusOK, item)
		return
	}
	respondOK(c, http.StatusOK, gin.H{"status": "ok"})
}

// DELETE /api/consumables/:id
func DeleteConsumable(c *gin.Context) {
	if err := db.GetDB().Delete(&models.Consumable{}, "id = ?", c.Param("id")).Error; err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}
	c.Status(http.StatusNoContent)
}
