package rest

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/gogamastore/storefront/internal/common"
	"github.com/gogamastore/storefront/internal/server/models"
	"github.com/gogamastore/storefront/internal/server/services"
)

// bindJSON decodes the request body into dst. An empty body leaves dst
// untouched.
func bindJSON(c *gin.Context, dst any) error {
	if err := c.ShouldBindJSON(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("%w: %s", common.ErrValidation, err.Error())
	}
	return nil
}

func (s *HTTPServer) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.writeError(c, fmt.Errorf("%w: %s", common.ErrValidation, err.Error()))
		return
	}

	sess, err := s.deps.Users.Register(c.Request.Context(), services.Registration{
		FullName: req.FullName,
		Email:    req.Email,
		Phone:    req.Phone,
		Password: req.Password,
	})
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newSessionView(sess))
}

func (s *HTTPServer) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.writeError(c, fmt.Errorf("%w: %s", common.ErrValidation, err.Error()))
		return
	}

	sess, err := s.deps.Users.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newSessionView(sess))
}

func (s *HTTPServer) listProducts(c *gin.Context) {
	ps, err := s.deps.Catalog.ListProducts(c.Request.Context())
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newProductViews(c.Request.Context(), s.deps.Images, ps))
}

func (s *HTTPServer) getProduct(c *gin.Context) {
	p, err := s.deps.Catalog.GetProduct(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newProductView(c.Request.Context(), s.deps.Images, p))
}

func (s *HTTPServer) listByCategory(c *gin.Context) {
	ps, err := s.deps.Catalog.ListByCategory(c.Request.Context(), c.Param("name"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newProductViews(c.Request.Context(), s.deps.Images, ps))
}

func (s *HTTPServer) listCategories(c *gin.Context) {
	cs, err := s.deps.Catalog.ListCategories(c.Request.Context())
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newCategoryViews(c.Request.Context(), s.deps.Images, cs))
}

func (s *HTTPServer) getCart(c *gin.Context) {
	cart, err := s.deps.Carts.GetCart(c.Request.Context(), currentUser(c).ID)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newCartView(c.Request.Context(), s.deps.Images, cart))
}

// addToCart reads product_id and quantity from the JSON body, falling back
// to query parameters. Quantity defaults to 1.
func (s *HTTPServer) addToCart(c *gin.Context) {
	var req addItemRequest
	if err := bindJSON(c, &req); err != nil {
		s.writeError(c, err)
		return
	}

	if req.ProductID == "" {
		req.ProductID = c.Query("product_id")
	}
	quantity := 1
	switch {
	case req.Quantity != nil:
		quantity = *req.Quantity
	case c.Query("quantity") != "":
		q, err := strconv.Atoi(c.Query("quantity"))
		if err != nil {
			s.writeError(c, fmt.Errorf("%w: quantity must be an integer", common.ErrValidation))
			return
		}
		quantity = q
	}

	cart, err := s.deps.Carts.AddItem(c.Request.Context(), currentUser(c).ID, req.ProductID, quantity)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, cartResponse{
		Message: "Item added to cart",
		Cart:    newCartView(c.Request.Context(), s.deps.Images, cart),
	})
}

func (s *HTTPServer) removeFromCart(c *gin.Context) {
	cart, err := s.deps.Carts.RemoveItem(c.Request.Context(), currentUser(c).ID, c.Param("product_id"))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, cartResponse{
		Message: "Item removed from cart",
		Cart:    newCartView(c.Request.Context(), s.deps.Images, cart),
	})
}

func (s *HTTPServer) getProfile(c *gin.Context) {
	u, err := s.deps.Profiles.GetProfile(c.Request.Context(), currentUser(c).Email)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, newUserView(u))
}

func (s *HTTPServer) updateProfile(c *gin.Context) {
	var req profilePatchRequest
	if err := bindJSON(c, &req); err != nil {
		s.writeError(c, err)
		return
	}

	patch := models.ProfilePatch{FullName: req.FullName, Phone: req.Phone}
	if err := s.deps.Profiles.UpdateProfile(c.Request.Context(), currentUser(c).Email, patch); err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, messageResponse{Message: "Profile updated successfully"})
}
