package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/yeremiapane/storefront-app/models"
	"github.com/yeremiapane/storefront-app/utils"
	"gorm.io/gorm"
)

type MenuController struct {
	DB *gorm.DB
}

func NewMenuController(db *gorm.DB) *MenuController {
	return &MenuController{DB: db}
}

type menuRequest struct {
	Name        string              `json:"name" binding:"required"`
	Price       decimal.Decimal     `json:"price"`
	IsAvailable *bool               `json:"is_available"`
	Sizes       []models.MenuOption `json:"sizes"`
	Addons      []models.MenuOption `json:"addons"`
	Description string              `json:"description"`
}

func (r menuRequest) validate() error {
	if !r.Price.IsPositive() {
		return errors.New("price must be positive")
	}
	for _, s := range r.Sizes {
		if s.Name == "" || !s.Price.IsPositive() {
			return errors.New("every size needs a name and a positive price")
		}
	}
	for _, a := range r.Addons {
		if a.Name == "" || a.Price.IsNegative() {
			return errors.New("every addon needs a name and a non-negative price")
		}
	}
	return nil
}

// GetAllMenus -> katalog publik, hanya menu yang tersedia
func (mc *MenuController) GetAllMenus(c *gin.Context) {
	var menus []models.Menu
	if err := mc.DB.WithContext(c.Request.Context()).Where("is_available = ?", true).Order("name ASC").Find(&menus).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of menus", menus)
}

// GetAllMenusAdmin -> termasuk menu yang sedang tidak tersedia
func (mc *MenuController) GetAllMenusAdmin(c *gin.Context) {
	var menus []models.Menu
	if err := mc.DB.WithContext(c.Request.Context()).Order("name ASC").Find(&menus).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of menus", menus)
}

// CreateMenu
func (mc *MenuController) CreateMenu(c *gin.Context) {
	var req menuRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	if err := req.validate(); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	menu := models.Menu{
		Name:        req.Name,
		Price:       req.Price,
		IsAvailable: req.IsAvailable == nil || *req.IsAvailable,
		Sizes:       req.Sizes,
		Addons:      req.Addons,
		Description: req.Description,
	}
	if err := mc.DB.WithContext(c.Request.Context()).Create(&menu).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.InfoLogger.Printf("Menu %d (%s) created", menu.ID, menu.Name)
	utils.RespondJSON(c, http.StatusCreated, "Menu created", menu)
}

// UpdateMenu -> ganti seluruh field menu, harga order lama tidak berubah karena item sudah disnapshot
func (mc *MenuController) UpdateMenu(c *gin.Context) {
	menuID, err := strconv.ParseUint(c.Param("menu_id"), 10, 32)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("invalid menu_id"))
		return
	}

	var req menuRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	if err := req.validate(); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	db := mc.DB.WithContext(c.Request.Context())
	var menu models.Menu
	if err := db.First(&menu, menuID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondError(c, http.StatusNotFound, errors.New("menu not found"))
			return
		}
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	menu.Name = req.Name
	menu.Price = req.Price
	if req.IsAvailable != nil {
		menu.IsAvailable = *req.IsAvailable
	}
	menu.Sizes = req.Sizes
	menu.Addons = req.Addons
	menu.Description = req.Description
	if err := db.Save(&menu).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Menu updated", menu)
}

// DeleteMenu
func (mc *MenuController) DeleteMenu(c *gin.Context) {
	result := mc.DB.WithContext(c.Request.Context()).Delete(&models.Menu{}, c.Param("menu_id"))
	if result.Error != nil {
		utils.RespondError(c, http.StatusInternalServerError, result.Error)
		return
	}
	if result.RowsAffected == 0 {
		utils.RespondError(c, http.StatusNotFound, errors.New("menu not found"))
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Menu deleted", nil)
}
