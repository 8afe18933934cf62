package siteengine

import (
	"bytes"
	"net/http"

	"github.com/labstack/echo/v4"
)

// aiRequest is the body sent by the writing helpers of the admin forms.
type aiRequest struct {
	Title        string `json:"title" form:"title"`
	Text         string `json:"text" form:"text"`
	Content      string `json:"content" form:"content"`
	FocusKeyword string `json:"focusKeyword" form:"focusKeyword"`
	Prompt       string `json:"prompt" form:"prompt"`
}

type aiText struct {
	Text string `json:"text"`
}

func bindAI(c echo.Context) (aiRequest, error) {
	var req aiRequest
	if err := c.Bind(&req); err != nil {
		return req, jsonError(c, http.StatusBadRequest, "Invalid request body.")
	}
	return req, nil
}

func (a *App) handleAdminAIDraft(c echo.Context) error {
	req, err := bindAI(c)
	if err != nil {
		return err
	}
	out, err := a.AI.BlogDraft(c.Request().Context(), req.Title)
	if err != nil {
		return a.toolError(c, err)
	}
	return c.JSON(http.StatusOK, aiText{Text: out})
}

func (a *App) handleAdminAIImprove(c echo.Context) error {
	req, err := bindAI(c)
	if err != nil {
		return err
	}
	out, err := a.AI.ImproveText(c.Request().Context(), req.Text)
	if err != nil {
		return a.toolError(c, err)
	}
	return c.JSON(http.StatusOK, aiText{Text: out})
}

func (a *App) handleAdminAIExcerpt(c echo.Context) error {
	req, err := bindAI(c)
	if err != nil {
		return err
	}
	out, err := a.AI.Excerpt(c.Request().Context(), req.Content)
	if err != nil {
		return a.toolError(c, err)
	}
	return c.JSON(http.StatusOK, aiText{Text: out})
}

func (a *App) handleAdminAISEO(c echo.Context) error {
	req, err := bindAI(c)
	if err != nil {
		return err
	}
	out, err := a.AI.SEOMetadata(c.Request().Context(), req.Content, req.FocusKeyword)
	if err != nil {
		return a.toolError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

// handleAdminAIImage generates an illustration and stores it like an upload.
func (a *App) handleAdminAIImage(c echo.Context) error {
	req, err := bindAI(c)
	if err != nil {
		return err
	}
	prompt := req.Prompt
	if prompt == "" {
		prompt = req.Title
	}
	img, err := a.AI.GenerateImage(c.Request().Context(), prompt)
	if err != nil {
		return a.toolError(c, err)
	}
	info, err := a.storeImage(c, aiImagePrefix, prompt, bytes.NewReader(img.Data))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, info)
}
