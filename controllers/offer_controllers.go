package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/storefront-app/models"
	"github.com/yeremiapane/storefront-app/services"
	"github.com/yeremiapane/storefront-app/utils"
)

type OfferController struct {
	Store services.OfferStore
}

func NewOfferController(store services.OfferStore) *OfferController {
	return &OfferController{Store: store}
}

// GetAllOffers
func (oc *OfferController) GetAllOffers(c *gin.Context) {
	offers, err := oc.Store.List(c.Request.Context())
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of offers", offers)
}

// SaveOffer -> create atau update berdasarkan code
func (oc *OfferController) SaveOffer(c *gin.Context) {
	var offer models.Offer
	if err := c.ShouldBindJSON(&offer); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	offer.ID = 0
	offer.Code = services.NormalizeCode(offer.Code)

	if err := services.ValidateOffer(offer); err != nil {
		respondServiceError(c, err)
		return
	}
	if err := oc.Store.Save(c.Request.Context(), &offer); err != nil {
		respondServiceError(c, err)
		return
	}

	utils.InfoLogger.Printf("Offer %s saved (type=%s, value=%s)", offer.Code, offer.DiscountType, offer.DiscountValue)
	utils.RespondJSON(c, http.StatusOK, "Offer saved", offer)
}

// DeleteOffer
func (oc *OfferController) DeleteOffer(c *gin.Context) {
	code := services.NormalizeCode(c.Param("code"))
	if err := oc.Store.Delete(c.Request.Context(), code); err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Offer deleted", gin.H{"code": code})
}
