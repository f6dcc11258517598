package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/campuscart/backend/internal/lifecycle"
	"github.com/campuscart/backend/internal/models"
	"github.com/campuscart/backend/internal/storage"
)

// Viewer identifies who is looking at or acting on a listing.
type Viewer struct {
	Username string
	Role     models.Role
}

func (v Viewer) IsAdmin() bool { return v.Role == models.RoleAdmin }

type ProductService struct {
	products  ProductStore
	users     UserStore
	bookmarks BookmarkStore
	images    *ImageService
	notifier  *NotificationService
}

// NewProductService wires the product workflow. bookmarks, images and
// notifier may be nil.
func NewProductService(products ProductStore, users UserStore, bookmarks BookmarkStore, images *ImageService, notifier *NotificationService) *ProductService {
	return &ProductService{
		products:  products,
		users:     users,
		bookmarks: bookmarks,
		images:    images,
		notifier:  notifier,
	}
}

// Create stores a new listing for seller. New listings always await review,
// whatever status the form carries.
func (s *ProductService) Create(ctx context.Context, seller string, form *models.ProductForm, img *ImageUpload) (*models.Product, error) {
	if _, err := s.users.Get(ctx, seller); err != nil {
		return nil, err
	}

	now := nowUTC()
	p := &models.Product{
		Name:           form.Name,
		Description:    form.Description,
		Price:          form.Price,
		Quantity:       form.Quantity,
		Category:       form.Category,
		Condition:      form.Condition,
		Status:         lifecycle.StatusPending,
		SellerUsername: seller,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if img != nil {
		if s.images == nil {
			return nil, ErrInvalidImage
		}
		res, err := s.images.Upload(ctx, img, seller, ImageKindProduct)
		if err != nil {
			return nil, err
		}
		p.ImagePath, p.ImageKey = res.URL, res.Key
	}

	created, err := s.products.Create(ctx, p)
	if err != nil {
		s.removeImage(ctx, p.ImageKey)
		return nil, err
	}
	log.Printf("[CreateProduct] code=%d seller=%s", created.Code, seller)
	return created, nil
}

// Get returns a listing. Listings that are not publicly visible are reported
// as missing unless the viewer owns them or is an admin.
func (s *ProductService) Get(ctx context.Context, code int, viewer Viewer) (*models.Product, error) {
	p, err := s.products.Get(ctx, code)
	if err != nil {
		return nil, err
	}
	if !viewer.IsAdmin() && !lifecycle.VisibleTo(p.Status, p.SellerUsername, viewer.Username) {
		return nil, ErrProductNotFound
	}
	return p, nil
}

func (s *ProductService) Seller(ctx context.Context, code int, viewer Viewer) (*models.Seller, error) {
	p, err := s.Get(ctx, code, viewer)
	if err != nil {
		return nil, err
	}
	u, err := s.users.Get(ctx, p.SellerUsername)
	if err != nil {
		return nil, err
	}
	seller := u.Seller()
	return &seller, nil
}

func productStatus(p *models.Product) lifecycle.Status { return p.Status }

// ListForViewer is the home feed: visible listings of everyone but viewer.
func (s *ProductService) ListForViewer(ctx context.Context, viewer string) ([]*models.Product, error) {
	return s.Browse(ctx, viewer, models.ProductFilter{})
}

// Browse is the home feed narrowed by category and condition.
func (s *ProductService) Browse(ctx context.Context, viewer string, f models.ProductFilter) ([]*models.Product, error) {
	list, err := s.products.List(ctx, ProductQuery{
		ExcludeSeller: viewer,
		Status:        lifecycle.StatusApproved,
		Category:      f.Category,
		Condition:     f.Condition,
	})
	if err != nil {
		return nil, err
	}
	return lifecycle.FilterVisible(list, productStatus), nil
}

// ListBySeller returns every listing of seller to the seller and only the
// visible ones to anybody else.
func (s *ProductService) ListBySeller(ctx context.Context, seller, viewer string) ([]*models.Product, error) {
	list, err := s.products.List(ctx, ProductQuery{Seller: seller})
	if err != nil {
		return nil, err
	}
	if seller == viewer {
		return list, nil
	}
	return lifecycle.FilterVisible(list, productStatus), nil
}

// writeAttempts bounds how often a conditional write is retried after the
// listing changed underneath it.
const writeAttempts = 3

// Update applies a seller edit and resolves the resulting status. The write
// only lands if the listing still has the status the edit was resolved
// against; otherwise the edit is resolved again on a fresh read, so an
// admin review in between is never silently overwritten.
func (s *ProductService) Update(ctx context.Context, code int, editor string, form *models.ProductForm, img *ImageUpload) (*models.ProductUpdateResult, error) {
	var (
		uploaded *storage.PutResult
		saved    *models.Product
		res      lifecycle.Resolution
		oldKey   string
		err      error
	)
	for attempt := 1; ; attempt++ {
		var p *models.Product
		p, err = s.products.Get(ctx, code)
		if err != nil {
			break
		}
		if p.SellerUsername != editor {
			err = ErrForbidden
			break
		}

		res, err = lifecycle.Resolve(lifecycle.Edit{
			Current:   p.Status,
			Original:  p.Fields(),
			Proposed:  form.Fields(img != nil),
			Requested: form.Status,
		})
		if err != nil {
			log.Printf("[UpdateProduct] code=%d status=%s err=%v", code, p.Status, err)
			break
		}

		if img != nil && uploaded == nil {
			if s.images == nil {
				return nil, ErrInvalidImage
			}
			up, uerr := s.images.Upload(ctx, img, editor, ImageKindProduct)
			if uerr != nil {
				return nil, uerr
			}
			uploaded = &up
		}

		expected := p.Status
		oldKey = p.ImageKey
		if uploaded != nil {
			p.ImagePath, p.ImageKey = uploaded.URL, uploaded.Key
		}
		p.Name = form.Name
		p.Description = form.Description
		p.Price = form.Price
		p.Quantity = form.Quantity
		p.Category = form.Category
		p.Condition = form.Condition
		p.Status = res.Status
		p.UpdatedAt = nowUTC()

		saved, err = s.products.Update(ctx, p, expected)
		if !errors.Is(err, ErrStatusConflict) || attempt == writeAttempts {
			break
		}
		log.Printf("[UpdateProduct] code=%d status moved from %s, re-evaluating", code, expected)
	}

	if err != nil {
		if uploaded != nil {
			s.removeImage(ctx, uploaded.Key)
		}
		return nil, err
	}
	if uploaded != nil && oldKey != "" && oldKey != saved.ImageKey {
		s.removeImage(ctx, oldKey)
	}

	log.Printf("[UpdateProduct] code=%d status=%s changed=%v", code, saved.Status, res.StatusChanged())
	return &models.ProductUpdateResult{
		Product:       saved,
		Message:       res.Message(),
		StatusChanged: res.StatusChanged(),
	}, nil
}

// Delete removes a listing owned by the viewer, or any listing for an admin.
func (s *ProductService) Delete(ctx context.Context, code int, viewer Viewer) error {
	p, err := s.products.Get(ctx, code)
	if err != nil {
		return err
	}
	if !viewer.IsAdmin() && p.SellerUsername != viewer.Username {
		return ErrForbidden
	}
	return s.remove(ctx, code)
}

// BulkDelete removes the listed codes, skipping unknown ones, and returns
// how many were deleted.
func (s *ProductService) BulkDelete(ctx context.Context, codes []int) (int, error) {
	deleted := 0
	for _, code := range codes {
		err := s.remove(ctx, code)
		if errors.Is(err, ErrProductNotFound) {
			continue
		}
		if err != nil {
			return deleted, fmt.Errorf("delete product %d: %w", code, err)
		}
		deleted++
	}
	return deleted, nil
}

func (s *ProductService) remove(ctx context.Context, code int) error {
	p, err := s.products.Delete(ctx, code)
	if err != nil {
		return err
	}
	s.removeImage(ctx, p.ImageKey)
	if s.bookmarks != nil {
		if err := s.bookmarks.DeleteByProduct(ctx, code); err != nil {
			log.Printf("[DeleteProduct] bookmarks code=%d err=%v", code, err)
		}
	}
	return nil
}

func (s *ProductService) removeImage(ctx context.Context, key string) {
	if s.images != nil {
		s.images.Remove(ctx, key)
	}
}

// ReviewQueue lists every listing for the admin review table.
func (s *ProductService) ReviewQueue(ctx context.Context) ([]*models.Product, error) {
	return s.products.List(ctx, ProductQuery{})
}

func (s *ProductService) Approve(ctx context.Context, code int) (*models.Product, error) {
	return s.review(ctx, code, lifecycle.ActionApprove, "")
}

func (s *ProductService) Reject(ctx context.Context, code int, feedback string) (*models.Product, error) {
	return s.review(ctx, code, lifecycle.ActionReject, feedback)
}

// review writes only status and feedback, conditional on the status the
// decision was made from. A listing that changed in between (a seller
// marking it Sold, say) is decided again on a fresh read.
func (s *ProductService) review(ctx context.Context, code int, action lifecycle.Action, feedback string) (*models.Product, error) {
	for attempt := 1; ; attempt++ {
		p, err := s.products.Get(ctx, code)
		if err != nil {
			return nil, err
		}

		d, err := lifecycle.Review(p.Status, action)
		if err != nil {
			log.Printf("[ReviewProduct] code=%d action=%s status=%s err=%v", code, action, p.Status, err)
			return nil, err
		}
		if !d.Changed {
			return p, nil
		}

		upd := ReviewUpdate{Status: d.Status, UpdatedAt: nowUTC()}
		if action == lifecycle.ActionReject {
			upd.Feedback = feedback
		}
		saved, err := s.products.SetReview(ctx, code, p.Status, upd)
		if errors.Is(err, ErrStatusConflict) && attempt < writeAttempts {
			log.Printf("[ReviewProduct] code=%d status moved from %s, re-evaluating", code, p.Status)
			continue
		}
		if err != nil {
			return nil, err
		}
		log.Printf("[ReviewProduct] code=%d action=%s status=%s", code, action, saved.Status)

		s.notifyReview(ctx, saved, action, feedback)
		return saved, nil
	}
}

func (s *ProductService) notifyReview(ctx context.Context, p *models.Product, action lifecycle.Action, feedback string) {
	if s.notifier == nil {
		return
	}
	msg := fmt.Sprintf("Your product '%s' has been approved!", p.Name)
	typ := models.NotificationInfo
	if action == lifecycle.ActionReject {
		msg = fmt.Sprintf("Your product %s has been rejected. Feedback: %s", p.Name, feedback)
		typ = models.NotificationRejection
	}
	if _, err := s.notifier.Notify(ctx, p.SellerUsername, msg, typ); err != nil {
		log.Printf("[ReviewProduct] notify code=%d err=%v", p.Code, err)
	}
}
