// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package devapi

import (
	"errors"
	"io"
	"net/http"
	"path"
	"strings"

	"github.com/AleutianAI/inkwell/pkg/datatypes"
	"github.com/AleutianAI/inkwell/pkg/validation"
	"github.com/gin-gonic/gin"
)

// MaxImageBytes bounds an uploaded article image.
const MaxImageBytes = 5 << 20

// -----------------------------------------------------------------------------
// Request bodies
// -----------------------------------------------------------------------------

type signUpBody struct {
	FirstName       string `json:"firstName" binding:"required"`
	LastName        string `json:"lastName" binding:"required"`
	Email           string `json:"email" binding:"required,email"`
	Phone           string `json:"phone" binding:"required,numeric,min=10"`
	DateOfBirth     string `json:"dateOfBirth" binding:"required"`
	Password        string `json:"password" binding:"required,min=6"`
	ConfirmPassword string `json:"confirmPassword" binding:"required"`
}

type signInBody struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// editProfileBody accepts one field at a time, or the preference list.
type editProfileBody struct {
	UserID      string                `json:"userId" binding:"required"`
	FirstName   *string               `json:"firstName"`
	LastName    *string               `json:"lastName"`
	Email       *string               `json:"email"`
	Phone       *string               `json:"phone"`
	DateOfBirth *string               `json:"dob"`
	Preferences *[]datatypes.Category `json:"preferences"`
}

func (b editProfileBody) field() (datatypes.ProfileField, string, bool) {
	switch {
	case b.FirstName != nil:
		return datatypes.FieldFirstName, *b.FirstName, true
	case b.LastName != nil:
		return datatypes.FieldLastName, *b.LastName, true
	case b.Email != nil:
		return datatypes.FieldEmail, *b.Email, true
	case b.Phone != nil:
		return datatypes.FieldPhone, *b.Phone, true
	case b.DateOfBirth != nil:
		return datatypes.FieldDateOfBirth, *b.DateOfBirth, true
	default:
		return "", "", false
	}
}

func failure(msg string) datatypes.StatusResponse {
	return datatypes.StatusResponse{Success: false, Message: msg}
}

func success() datatypes.StatusResponse {
	return datatypes.StatusResponse{Success: true}
}

// refuse answers a domain refusal as 200 {success:false}, which the client
// reports as a targeted alert rather than a transport failure.
func refuse(c *gin.Context, err error) {
	c.JSON(http.StatusOK, failure(capitalize(err.Error())))
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, failure(err.Error()))
}

func forbidden(c *gin.Context) {
	c.JSON(http.StatusUnauthorized, failure("Session does not match user"))
}

// -----------------------------------------------------------------------------
// Accounts
// -----------------------------------------------------------------------------

func (s *Server) handleSignUp(c *gin.Context) {
	var body signUpBody
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, err)
		return
	}
	id, err := s.store.Register(Registration{
		FirstName:   strings.TrimSpace(body.FirstName),
		LastName:    strings.TrimSpace(body.LastName),
		Email:       body.Email,
		Phone:       body.Phone,
		DateOfBirth: body.DateOfBirth,
		Password:    body.Password,
	}, body.ConfirmPassword)
	if err != nil {
		if errors.Is(err, ErrEmailTaken) || errors.Is(err, ErrPasswordMismatch) {
			c.JSON(http.StatusOK, datatypes.SignUpResponse{Success: false, Message: capitalize(err.Error())})
			return
		}
		s.logger.Error("signup failed", "error", err)
		c.JSON(http.StatusInternalServerError, failure("Registration failed"))
		return
	}
	s.updateCounts()
	s.logger.Info("user registered", "user_id", id)
	c.JSON(http.StatusOK, datatypes.SignUpResponse{Success: true, NewUserID: id})
}

func (s *Server) handleSignIn(c *gin.Context) {
	var body signInBody
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, err)
		return
	}
	user, err := s.store.Authenticate(body.Email, body.Password)
	if err != nil {
		s.logger.Info("signin refused", "email_present", body.Email != "")
		c.JSON(http.StatusOK, datatypes.SignInResponse{Success: false, Message: "Invalid email or password"})
		return
	}
	token, expires, err := s.auth.Issue(AuthInfo{UserID: user.ID, Email: string(user.Email), Role: user.Role})
	if err != nil {
		s.logger.Error("issue token", "error", err)
		c.JSON(http.StatusInternalServerError, failure("Sign in failed"))
		return
	}
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     TokenCookie,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   s.cfg.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	c.JSON(http.StatusOK, datatypes.SignInResponse{Success: true, UserData: &user})
}

func (s *Server) handleEditProfile(c *gin.Context) {
	var body editProfileBody
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, err)
		return
	}
	if !actingAs(c, body.UserID) {
		forbidden(c)
		return
	}
	if body.Preferences != nil {
		if err := s.store.SetPreferences(body.UserID, datatypes.CategoryIDs(*body.Preferences)); err != nil {
			refuse(c, err)
			return
		}
		c.JSON(http.StatusOK, success())
		return
	}
	field, value, found := body.field()
	if !found {
		badRequest(c, ErrUnknownField)
		return
	}
	if err := s.store.EditProfile(body.UserID, field, strings.TrimSpace(value)); err != nil {
		refuse(c, err)
		return
	}
	c.JSON(http.StatusOK, success())
}

// -----------------------------------------------------------------------------
// Categories
// -----------------------------------------------------------------------------

func (s *Server) handleCategories(c *gin.Context) {
	c.JSON(http.StatusOK, datatypes.CategoriesResponse{Success: true, AllCategories: s.store.Categories()})
}

func (s *Server) handleSelectCategory(c *gin.Context) {
	var body datatypes.SelectCategoryRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, err)
		return
	}
	if body.UserID == "" {
		badRequest(c, errors.New("userId is required"))
		return
	}
	if !actingAs(c, body.UserID) {
		forbidden(c)
		return
	}
	if err := s.store.SetPreferences(body.UserID, body.CategoryIDs); err != nil {
		refuse(c, err)
		return
	}
	c.JSON(http.StatusOK, success())
}

// -----------------------------------------------------------------------------
// Articles
// -----------------------------------------------------------------------------

func (s *Server) handleCreateArticle(c *gin.Context) {
	userID := c.PostForm("userId")
	if info := AuthFrom(c); info != nil && userID == "" {
		userID = info.UserID
	}
	if userID == "" {
		badRequest(c, errors.New("userId is required"))
		return
	}
	if !actingAs(c, userID) {
		forbidden(c)
		return
	}
	image, err := s.readImage(c)
	if err != nil {
		badRequest(c, err)
		return
	}
	article, err := s.store.CreateArticle(datatypes.Article{
		Title:       strings.TrimSpace(c.PostForm("articleName")),
		Description: strings.TrimSpace(c.PostForm("description")),
		Tags:        datatypes.SplitTags(c.PostForm("tags")),
		Category:    c.PostForm("category"),
		UserID:      userID,
		Image:       image,
	})
	if err != nil {
		refuse(c, err)
		return
	}
	s.updateCounts()
	s.logger.Info("article created", "article_id", article.ID, "user_id", userID)
	c.JSON(http.StatusOK, success())
}

func (s *Server) handleFeed(c *gin.Context) {
	var body datatypes.UserRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, err)
		return
	}
	if !actingAs(c, body.UserID) {
		forbidden(c)
		return
	}
	articles, err := s.store.Feed(body.UserID)
	if err != nil {
		c.JSON(http.StatusNotFound, failure(capitalize(err.Error())))
		return
	}
	c.JSON(http.StatusOK, datatypes.ArticlesResponse{AllArticles: articles})
}

func (s *Server) handleViewArticle(c *gin.Context) {
	var body datatypes.ViewArticleRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, err)
		return
	}
	article, err := s.store.Article(body.ArticleID)
	if err != nil {
		c.JSON(http.StatusOK, datatypes.ViewArticleResponse{})
		return
	}
	c.JSON(http.StatusOK, datatypes.ViewArticleResponse{Article: &article})
}

func (s *Server) handleMyArticles(c *gin.Context) {
	var body datatypes.UserRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, err)
		return
	}
	if !actingAs(c, body.UserID) {
		forbidden(c)
		return
	}
	articles, err := s.store.ByAuthor(body.UserID)
	if err != nil {
		c.JSON(http.StatusNotFound, failure(capitalize(err.Error())))
		return
	}
	c.JSON(http.StatusOK, datatypes.MyArticlesResponse{MyArticles: articles})
}

func (s *Server) handleEditArticle(c *gin.Context) {
	id := c.PostForm("articleId")
	if id == "" {
		badRequest(c, errors.New("articleId is required"))
		return
	}
	var patch ArticlePatch
	if v, found := c.GetPostForm("articleName"); found {
		v = strings.TrimSpace(v)
		patch.Title = &v
	}
	if v, found := c.GetPostForm("description"); found {
		v = strings.TrimSpace(v)
		patch.Description = &v
	}
	if v, found := c.GetPostForm("category"); found {
		patch.CategoryID = &v
	}
	if v, found := c.GetPostForm("tags"); found {
		tags := datatypes.SplitTags(v)
		if tags == nil {
			tags = []string{}
		}
		patch.Tags = &tags
	}
	image, err := s.readImage(c)
	if err != nil {
		badRequest(c, err)
		return
	}
	patch.Image = image

	author := ""
	if info := AuthFrom(c); info != nil {
		author = info.UserID
	}
	if err := s.store.EditArticle(id, author, patch); err != nil {
		refuse(c, err)
		return
	}
	c.JSON(http.StatusOK, success())
}

// -----------------------------------------------------------------------------
// Reactions
// -----------------------------------------------------------------------------

// handleReaction serves both reaction endpoints. The path decides the
// reaction; the body's type must agree with it.
func (s *Server) handleReaction(kind datatypes.ReactionType) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body datatypes.ReactionRequest
		if err := c.ShouldBindJSON(&body); err != nil {
			badRequest(c, err)
			return
		}
		if body.Type != "" && body.Type != kind {
			badRequest(c, errors.New("reaction type does not match endpoint"))
			return
		}
		if !actingAs(c, body.UserID) {
			forbidden(c)
			return
		}
		user, err := s.store.React(body.UserID, body.ArticleID, kind)
		if err != nil {
			c.JSON(http.StatusOK, datatypes.ReactionResponse{Success: false, Message: capitalize(err.Error())})
			return
		}
		s.metrics.RecordReaction(string(kind))
		c.JSON(http.StatusOK, datatypes.ReactionResponse{Success: true, UserData: &user})
	}
}

func (s *Server) handleBlock(c *gin.Context) {
	var body datatypes.BlockRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		badRequest(c, err)
		return
	}
	if !actingAs(c, body.UserID) {
		forbidden(c)
		return
	}
	if err := s.store.Block(body.UserID, body.ArticleID); err != nil {
		refuse(c, err)
		return
	}
	s.metrics.RecordReaction("block")
	c.JSON(http.StatusOK, success())
}

// -----------------------------------------------------------------------------
// Images
// -----------------------------------------------------------------------------

// readImage stores the optional "image" part and returns its URL path.
func (s *Server) readImage(c *gin.Context) (string, error) {
	fh, err := c.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	if fh.Size > MaxImageBytes {
		return "", errors.New("image is too large")
	}
	f, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, MaxImageBytes+1))
	if err != nil {
		return "", err
	}
	if len(data) > MaxImageBytes {
		return "", errors.New("image is too large")
	}
	contentType := fh.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = http.DetectContentType(data)
	}
	id := s.store.SaveImage(Image{ContentType: contentType, Data: data})
	return path.Join("/images", id), nil
}

func (s *Server) handleImage(c *gin.Context) {
	id := c.Param("id")
	if validation.ValidateID(id) != nil {
		c.Status(http.StatusBadRequest)
		return
	}
	img, found := s.store.Image(id)
	if !found {
		c.Status(http.StatusNotFound)
		return
	}
	c.Data(http.StatusOK, img.ContentType, img.Data)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
