package web

import (
	"errors"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/DanielPodolsky/YelpCamp/internal/service"
)

type CampgroundHandler struct {
	campgrounds *service.CampgroundService
	log         zerolog.Logger
}

func NewCampgroundHandler(campgrounds *service.CampgroundService, log zerolog.Logger) *CampgroundHandler {
	return &CampgroundHandler{campgrounds: campgrounds, log: log}
}

func (h *CampgroundHandler) Home(c echo.Context) error {
	return c.Render(http.StatusOK, "home", echo.Map{})
}

func (h *CampgroundHandler) Index(c echo.Context) error {
	ctx := c.Request().Context()

	page := 1
	if raw := c.QueryParam("page"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			page = n
		}
	}

	listing, err := h.campgrounds.List(ctx, page)
	if err != nil {
		h.log.Error().Err(err).Msg("list campgrounds failed")
		return err
	}
	summaries, err := h.campgrounds.MapSummaries(ctx)
	if err != nil {
		h.log.Error().Err(err).Msg("list map summaries failed")
		return err
	}

	return c.Render(http.StatusOK, "campgrounds/index", echo.Map{
		"Title":     "All Campgrounds",
		"Page":      listing,
		"Summaries": summaries,
	})
}

func (h *CampgroundHandler) NewForm(c echo.Context) error {
	return c.Render(http.StatusOK, "campgrounds/new", echo.Map{
		"Title": "New Campground",
	})
}

func (h *CampgroundHandler) Create(c echo.Context) error {
	user, ok := CurrentUser(c)
	if !ok {
		return c.Redirect(http.StatusFound, "/login")
	}

	form, err := h.bindCampgroundForm(c)
	if err != nil {
		AddFlash(c, FlashError, err.Error())
		return c.Redirect(http.StatusFound, "/campgrounds/new")
	}

	uploads, closers, err := h.collectUploads(c)
	if err != nil {
		AddFlash(c, FlashError, "Could not read uploaded images")
		return c.Redirect(http.StatusFound, "/campgrounds/new")
	}
	defer closeAll(closers)

	campground, err := h.campgrounds.Create(c.Request().Context(), user.ID, service.CampgroundInput{
		Title:       form.Title,
		Price:       form.Price,
		Description: form.Description,
		Location:    form.Location,
	}, uploads)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCampgroundValidation):
			AddFlash(c, FlashError, err.Error())
			return c.Redirect(http.StatusFound, "/campgrounds/new")
		case errors.Is(err, service.ErrLocationNotFound):
			AddFlash(c, FlashError, "Location not found, try something more specific")
			return c.Redirect(http.StatusFound, "/campgrounds/new")
		default:
			h.log.Error().Err(err).Msg("create campground failed")
			return err
		}
	}

	AddFlash(c, FlashSuccess, "Successfully made a new campground!")
	return c.Redirect(http.StatusFound, "/campgrounds/"+campground.ID.String())
}

func (h *CampgroundHandler) Show(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		AddFlash(c, FlashError, "Cannot find that campground!")
		return c.Redirect(http.StatusFound, "/campgrounds")
	}
	campground, err := h.campgrounds.Get(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrCampgroundNotFound) {
			AddFlash(c, FlashError, "Cannot find that campground!")
			return c.Redirect(http.StatusFound, "/campgrounds")
		}
		h.log.Error().Err(err).Str("campground_id", id.String()).Msg("show campground failed")
		return err
	}
	return c.Render(http.StatusOK, "campgrounds/show", echo.Map{
		"Title":      campground.Title,
		"Campground": campground,
	})
}

// EditForm renders the edit page. RequireCampgroundAuthor has already loaded
// and authorized the campground.
func (h *CampgroundHandler) EditForm(c echo.Context) error {
	campground, ok := campgroundFromContext(c)
	if !ok {
		AddFlash(c, FlashError, "Cannot find that campground!")
		return c.Redirect(http.StatusFound, "/campgrounds")
	}
	return c.Render(http.StatusOK, "campgrounds/edit", echo.Map{
		"Title":      "Edit " + campground.Title,
		"Campground": campground,
	})
}

func (h *CampgroundHandler) Update(c echo.Context) error {
	user, _ := CurrentUser(c)
	campground, ok := campgroundFromContext(c)
	if !ok || user == nil {
		AddFlash(c, FlashError, "Cannot find that campground!")
		return c.Redirect(http.StatusFound, "/campgrounds")
	}
	showPath := "/campgrounds/" + campground.ID.String()
	editPath := showPath + "/edit"

	form, err := h.bindCampgroundForm(c)
	if err != nil {
		AddFlash(c, FlashError, err.Error())
		return c.Redirect(http.StatusFound, editPath)
	}

	uploads, closers, err := h.collectUploads(c)
	if err != nil {
		AddFlash(c, FlashError, "Could not read uploaded images")
		return c.Redirect(http.StatusFound, editPath)
	}
	defer closeAll(closers)

	deleteKeys := formValues(c, "deleteImages")

	_, err = h.campgrounds.Update(c.Request().Context(), campground.ID, user.ID, service.CampgroundInput{
		Title:       form.Title,
		Price:       form.Price,
		Description: form.Description,
		Location:    form.Location,
	}, uploads, deleteKeys)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCampgroundValidation):
			AddFlash(c, FlashError, err.Error())
			return c.Redirect(http.StatusFound, editPath)
		case errors.Is(err, service.ErrLocationNotFound):
			AddFlash(c, FlashError, "Location not found, try something more specific")
			return c.Redirect(http.StatusFound, editPath)
		case errors.Is(err, service.ErrCampgroundNotFound):
			AddFlash(c, FlashError, "Cannot find that campground!")
			return c.Redirect(http.StatusFound, "/campgrounds")
		case errors.Is(err, service.ErrNotCampgroundAuthor):
			AddFlash(c, FlashError, "You do not have permission to do that!")
			return c.Redirect(http.StatusFound, showPath)
		default:
			h.log.Error().Err(err).Str("campground_id", campground.ID.String()).Msg("update campground failed")
			return err
		}
	}

	AddFlash(c, FlashSuccess, "Successfully updated campground!")
	return c.Redirect(http.StatusFound, showPath)
}

func (h *CampgroundHandler) Delete(c echo.Context) error {
	user, _ := CurrentUser(c)
	campground, ok := campgroundFromContext(c)
	if !ok || user == nil {
		AddFlash(c, FlashError, "Cannot find that campground!")
		return c.Redirect(http.StatusFound, "/campgrounds")
	}

	if err := h.campgrounds.Delete(c.Request().Context(), campground.ID, user.ID); err != nil {
		switch {
		case errors.Is(err, service.ErrCampgroundNotFound):
			AddFlash(c, FlashError, "Cannot find that campground!")
		case errors.Is(err, service.ErrNotCampgroundAuthor):
			AddFlash(c, FlashError, "You do not have permission to do that!")
		default:
			h.log.Error().Err(err).Str("campground_id", campground.ID.String()).Msg("delete campground failed")
			return err
		}
		return c.Redirect(http.StatusFound, "/campgrounds")
	}

	AddFlash(c, FlashSuccess, "Successfully deleted campground")
	return c.Redirect(http.StatusFound, "/campgrounds")
}

func (h *CampgroundHandler) bindCampgroundForm(c echo.Context) (*CampgroundForm, error) {
	var form CampgroundForm
	if err := c.Bind(&form); err != nil {
		return nil, errors.New("invalid form submission")
	}
	if err := ValidateForm(form); err != nil {
		return nil, err
	}
	return &form, nil
}

// collectUploads opens each file in the "images" field. Callers must close
// the returned readers once the service is done with them.
func (h *CampgroundHandler) collectUploads(c echo.Context) ([]service.ImageUpload, []multipart.File, error) {
	mf, err := c.MultipartForm()
	if err != nil {
		if errors.Is(err, http.ErrNotMultipart) {
			return nil, nil, nil
		}
		return nil, nil, err
	}

	var uploads []service.ImageUpload
	var closers []multipart.File
	for _, header := range mf.File["images"] {
		if header.Size == 0 && header.Filename == "" {
			continue
		}
		file, err := header.Open()
		if err != nil {
			closeAll(closers)
			return nil, nil, err
		}
		closers = append(closers, file)
		uploads = append(uploads, service.ImageUpload{
			Reader:      file,
			Size:        header.Size,
			FileName:    header.Filename,
			ContentType: header.Header.Get("Content-Type"),
		})
	}
	return uploads, closers, nil
}

func formValues(c echo.Context, name string) []string {
	values, err := c.FormParams()
	if err != nil {
		return nil
	}
	return values[name]
}

func closeAll(files []multipart.File) {
	for _, f := range files {
		_ = f.Close()
	}
}
