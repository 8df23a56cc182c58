package service

import (
	"stockquote_backend/internal/quotes/repository"
	"stockquote_backend/internal/quotes/transport"
)

func toQuoteResponse(q *repository.Quote, items []repository.QuoteItem, evts []repository.QuoteEvent, comments []repository.QuoteComment) transport.QuoteResponse {
	resp := transport.QuoteResponse{
		ID:             q.ID,
		QuoteNumber:    q.QuoteNumber,
		Status:         q.Status,
		ClientID:       q.ClientID,
		ValidFrom:      q.ValidFrom,
		ValidUntil:     q.ValidUntil,
		Subtotal:       q.Subtotal.StringFixed(2),
		DiscountType:   q.DiscountType,
		DiscountValue:  q.DiscountValue.StringFixed(2),
		DiscountAmount: q.DiscountAmount.StringFixed(2),
		TaxRate:        q.TaxRate.StringFixed(2),
		TaxAmount:      q.TaxAmount.StringFixed(2),
		Total:          q.Total.StringFixed(2),
		Terms:          q.Terms,
		Notes:          q.Notes,
		InternalNotes:  q.InternalNotes,
		CreatedBy:      q.CreatedBy,
		AssignedTo:     q.AssignedTo,
		SentAt:         q.SentAt,
		ViewedAt:       q.ViewedAt,
		ApprovedAt:     q.ApprovedAt,
		DeclinedAt:     q.DeclinedAt,
		CreatedAt:      q.CreatedAt,
		UpdatedAt:      q.UpdatedAt,
	}
	for i := range items {
		resp.Items = append(resp.Items, toItemResponse(&items[i]))
	}
	for i := range evts {
		resp.Events = append(resp.Events, toEventResponse(&evts[i]))
	}
	for i := range comments {
		resp.Comments = append(resp.Comments, toCommentResponse(&comments[i]))
	}
	return resp
}

func toItemResponse(it *repository.QuoteItem) transport.ItemResponse {
	return transport.ItemResponse{
		ID:              it.ID,
		ItemType:        it.ItemType,
		ProductID:       it.ProductID,
		ServiceID:       it.ServiceID,
		WarehouseID:     it.WarehouseID,
		Name:            it.Name,
		Description:     it.Description,
		SKU:             it.SKU,
		UnitPrice:       it.UnitPrice.StringFixed(2),
		Quantity:        it.Quantity,
		DiscountPercent: it.DiscountPercent.StringFixed(2),
		Subtotal:        it.Subtotal.StringFixed(2),
		SortOrder:       it.SortOrder,
	}
}

func toEventResponse(e *repository.QuoteEvent) transport.EventResponse {
	return transport.EventResponse{
		ID:        e.ID,
		EventType: e.EventType,
		UserType:  e.UserType,
		UserName:  e.UserName,
		Metadata:  e.Metadata,
		CreatedAt: e.CreatedAt,
	}
}

func toCommentResponse(c *repository.QuoteComment) transport.CommentResponse {
	return transport.CommentResponse{
		ID:         c.ID,
		AuthorName: c.AuthorName,
		UserType:   c.UserType,
		IsInternal: c.IsInternal,
		Body:       c.Body,
		CreatedAt:  c.CreatedAt,
	}
}
