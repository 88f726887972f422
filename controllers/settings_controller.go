package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/washbook/washbook-api/config"
	"github.com/washbook/washbook-api/models"
	"github.com/washbook/washbook-api/services"
	"github.com/washbook/washbook-api/validation"
)

// UpdateSettingsRequest represents the request body for updating settings
type UpdateSettingsRequest struct {
	ShopName       string `json:"shop_name"`
	Address        string `json:"address"`
	Phone          string `json:"phone"`
	CurrencySymbol string `json:"currency_symbol"`
}

// GetSettings handles GET /api/v1/settings
func GetSettings(c *gin.Context) {
	settings, ok := loadSettings(c)
	if !ok {
		return
	}

	attachBrandingURLs(settings)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    settings,
	})
}

// UpdateSettings handles PUT /api/v1/settings (super_admin only)
func UpdateSettings(c *gin.Context) {
	settings, ok := loadSettings(c)
	if !ok {
		return
	}

	var req UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Invalid request data",
				"details": err.Error(),
			},
		})
		return
	}

	form := validation.NewForm(map[string][]validation.Rule{
		"shop_name": {
			validation.Required("Shop name is required"),
			validation.MaxLength(100, ""),
		},
		"phone": {
			validation.Phone(""),
		},
	})
	form.SetValue("shop_name", req.ShopName)
	form.SetValue("phone", req.Phone)
	if valid, errs := form.ValidateAll(); !valid {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "VALIDATION_ERROR",
				"message": "Settings data is invalid",
				"details": errs,
			},
		})
		return
	}

	currency := req.CurrencySymbol
	if currency == "" {
		currency = settings.CurrencySymbol
	}

	db := config.GetDB()
	if err := db.Model(settings).Updates(map[string]interface{}{
		"shop_name":       req.ShopName,
		"address":         req.Address,
		"phone":           req.Phone,
		"currency_symbol": currency,
	}).Error; err != nil {
		logrus.Errorf("failed to update settings: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to update settings",
			},
		})
		return
	}

	attachBrandingURLs(settings)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    settings,
	})
}

// UploadLogo handles POST /api/v1/settings/logo (super_admin only)
func UploadLogo(c *gin.Context) {
	uploadBrandingAsset(c, "logo")
}

// UploadFavicon handles POST /api/v1/settings/favicon (super_admin only)
func UploadFavicon(c *gin.Context) {
	uploadBrandingAsset(c, "favicon")
}

// uploadBrandingAsset stores a branding image and replaces the previous
// one, if any.
func uploadBrandingAsset(c *gin.Context, asset string) {
	settings, ok := loadSettings(c)
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_REQUEST",
				"message": "A file is required",
			},
		})
		return
	}

	key, err := services.GetAttachmentService().Upload(fileHeader, services.PrefixBranding)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "UPLOAD_ERROR",
				"message": err.Error(),
			},
		})
		return
	}

	var oldKey *string
	column := "logo_key"
	if asset == "favicon" {
		column = "favicon_key"
		oldKey = settings.FaviconKey
		settings.FaviconKey = &key
	} else {
		oldKey = settings.LogoKey
		settings.LogoKey = &key
	}

	db := config.GetDB()
	if err := db.Model(settings).Update(column, key).Error; err != nil {
		logrus.Errorf("failed to save %s key: %v", asset, err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to save settings",
			},
		})
		return
	}

	if oldKey != nil {
		if err := services.GetAttachmentService().Delete(*oldKey); err != nil {
			logrus.Warnf("failed to delete previous %s: %v", asset, err)
		}
	}

	attachBrandingURLs(settings)

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    settings,
	})
}

// loadSettings fetches the singleton settings row, creating it with
// defaults on first access. Writes the error response when it returns !ok.
func loadSettings(c *gin.Context) (*models.BusinessSettings, bool) {
	db := config.GetDB()
	var settings models.BusinessSettings
	if err := db.First(&settings).Error; err != nil {
		settings = models.BusinessSettings{
			ShopName:       "Washbook Laundry",
			CurrencySymbol: "₹",
		}
		if err := db.Create(&settings).Error; err != nil {
			logrus.Errorf("failed to create default settings: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "DATABASE_ERROR",
					"message": "Failed to load settings",
				},
			})
			return nil, false
		}
	}
	return &settings, true
}

// attachBrandingURLs fills the computed presigned URLs
func attachBrandingURLs(settings *models.BusinessSettings) {
	svc := services.GetAttachmentService()
	if settings.LogoKey != nil {
		if url, err := svc.URL(*settings.LogoKey); err == nil && url != "" {
			settings.LogoURL = &url
		}
	}
	if settings.FaviconKey != nil {
		if url, err := svc.URL(*settings.FaviconKey); err == nil && url != "" {
			settings.FaviconURL = &url
		}
	}
}
