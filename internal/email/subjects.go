package email

const (
	subjectQuoteLinkFmt     = "Quote %s from %s"
	subjectQuoteApprovedFmt = "Quote %s was approved"
	subjectQuoteDeclinedFmt = "Quote %s was declined"
	subjectQuoteCommentFmt  = "New comment on quote %s"
)
