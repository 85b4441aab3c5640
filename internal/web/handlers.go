package web

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/vocabadmin/internal/auth"
	"github.com/fyrsmithlabs/vocabadmin/internal/guard"
	"github.com/fyrsmithlabs/vocabadmin/internal/invite"
	"github.com/fyrsmithlabs/vocabadmin/internal/listview"
	"github.com/fyrsmithlabs/vocabadmin/internal/logging"
	"github.com/fyrsmithlabs/vocabadmin/internal/vocab"
)

type loginData struct {
	Username string
	Error    string
}

type homeData struct {
	CategoryCount int
	CountErr      bool
}

type categoriesData struct {
	Items    []vocab.Category
	Search   string
	Total    int
	Visible  int
	Err      string
	RetryURL string
}

type wordsData struct {
	Title       string
	NavName     string
	Items       []vocab.Word
	Search      string
	Status      listview.Status
	Statuses    []listview.Status
	Filtering   bool
	Total       int
	Visible     int
	Published   int
	Unpublished int
	Err         string
	RetryURL    string
}

type inviteData struct {
	Form  vocab.InviteRequest
	Roles []string
	Error string
	Sent  bool
}

func (s *Server) render(c echo.Context, status int, name, title string, data any) error {
	return c.Render(status, name, page{
		Title:         title,
		Authenticated: SessionFrom(c).Authenticated(),
		CSRF:          csrfToken(c),
		Data:          data,
	})
}

func (s *Server) handleLoginPage(c echo.Context) error {
	return s.render(c, http.StatusOK, pageLogin, "Sign in", loginData{})
}

func (s *Server) handleLogin(c echo.Context) error {
	ctx := c.Request().Context()
	username := c.FormValue("username")

	svc, err := s.backend.auth(SessionFrom(c), logging.FromContext(ctx))
	if err != nil {
		return err
	}

	if err := svc.Login(ctx, username, c.FormValue("password")); err != nil {
		var authErr *auth.AuthError
		if !errors.As(err, &authErr) {
			return err
		}
		status := http.StatusUnauthorized
		if authErr.Message == auth.MsgMissingFields {
			status = http.StatusUnprocessableEntity
		}
		return s.render(c, status, pageLogin, "Sign in", loginData{Username: username, Error: authErr.Message})
	}

	return c.Redirect(http.StatusSeeOther, guard.HomePath)
}

func (s *Server) handleLogout(c echo.Context) error {
	ctx := c.Request().Context()
	svc, err := s.backend.auth(SessionFrom(c), logging.FromContext(ctx))
	if err != nil {
		return err
	}
	if err := svc.Logout(ctx); err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, guard.LoginPath)
}

func (s *Server) handleHome(c echo.Context) error {
	ctx := c.Request().Context()
	logger := logging.FromContext(ctx)

	client, err := s.backend.client(SessionFrom(c), logger)
	if err != nil {
		return err
	}

	view := listview.NewCategoryView(client, listview.WithLogger(logger))
	defer view.Deactivate()

	data := homeData{}
	if err := view.Refresh(ctx); err != nil {
		data.CountErr = true
	} else {
		data.CategoryCount = view.Counts().Total
	}
	return s.render(c, http.StatusOK, pageHome, "Dashboard", data)
}

func (s *Server) handleCategories(c echo.Context) error {
	ctx := c.Request().Context()
	logger := logging.FromContext(ctx)

	client, err := s.backend.client(SessionFrom(c), logger)
	if err != nil {
		return err
	}

	view := listview.NewCategoryView(client, listview.WithLogger(logger))
	defer view.Deactivate()

	data := categoriesData{Search: c.QueryParam("search"), RetryURL: c.Request().URL.RequestURI()}
	status := http.StatusOK

	if err := view.Refresh(ctx); err != nil {
		data.Err = loadMessage(err, listview.MsgCategoriesFailed)
		status = http.StatusBadGateway
	} else {
		view.SetSearch(data.Search)
		data.Items = view.Filtered()
		counts := view.Counts()
		data.Total, data.Visible = counts.Total, counts.Visible
	}
	return s.render(c, status, pageCategories, "Categories", data)
}

func (s *Server) handleWords(c echo.Context) error {
	ctx := c.Request().Context()
	logger := logging.FromContext(ctx)

	id, err := url.PathUnescape(c.Param("categoryId"))
	if err != nil || id == "" {
		return echo.NewHTTPError(http.StatusNotFound, "unknown category")
	}

	statusFilter, err := listview.ParseStatus(c.QueryParam("status"))
	if err != nil {
		logger.Debug(ctx, "ignoring unknown status filter", zap.String("status", c.QueryParam("status")))
	}

	client, err := s.backend.client(SessionFrom(c), logger)
	if err != nil {
		return err
	}

	navName := c.QueryParam("name")
	view := listview.NewWordView(client, vocab.ID(id), navName, listview.WithLogger(logger))
	defer view.Deactivate()

	data := wordsData{
		NavName:  navName,
		Search:   c.QueryParam("search"),
		Status:   statusFilter,
		Statuses: listview.Statuses,
		RetryURL: c.Request().URL.RequestURI(),
	}
	status := http.StatusOK

	if err := view.Refresh(ctx); err != nil {
		data.Err = loadMessage(err, listview.MsgWordsFailed)
		status = http.StatusBadGateway
	} else {
		view.SetSearch(data.Search)
		view.SetStatus(statusFilter)

		data.Items = view.Filtered()
		data.Filtering = data.Search != "" || statusFilter != listview.StatusAll
		counts := view.Counts()
		data.Total, data.Visible = counts.Total, counts.Visible
		data.Published, data.Unpublished = listview.PublishedCounts(view.State().Items)
	}
	data.Title = view.Title()
	return s.render(c, status, pageWords, data.Title, data)
}

func (s *Server) handleInvitePage(c echo.Context) error {
	data := inviteData{Roles: vocab.Roles, Sent: c.QueryParam("sent") == "1"}
	return s.render(c, http.StatusOK, pageInvite, "Invite", data)
}

func (s *Server) handleInvite(c echo.Context) error {
	ctx := c.Request().Context()
	logger := logging.FromContext(ctx)

	req := vocab.InviteRequest{
		Name:    c.FormValue("name"),
		Surname: c.FormValue("surname"),
		Email:   c.FormValue("email"),
		Role:    c.FormValue("role"),
	}

	client, err := s.backend.client(SessionFrom(c), logger)
	if err != nil {
		return err
	}

	if err := invite.NewController(client, logger).Submit(ctx, req); err != nil {
		status := http.StatusBadGateway
		var verr *invite.ValidationError
		if errors.As(err, &verr) {
			status = http.StatusUnprocessableEntity
		}
		data := inviteData{Form: req, Roles: vocab.Roles, Error: invite.Message(err)}
		return s.render(c, status, pageInvite, "Invite", data)
	}

	// Post/redirect/get clears the form and shows the confirmation.
	return c.Redirect(http.StatusSeeOther, "/invite?sent=1")
}

func loadMessage(err error, fallback string) string {
	var loadErr *listview.LoadError
	if errors.As(err, &loadErr) {
		return loadErr.Message
	}
	return fallback
}
