package board

// movePieceBit relocates a single piece of color c/kind k from one square to another on both the
// aggregate and per-kind boards.
func (p *Position) movePieceBit(c Color, k PieceKind, from, to Square) {
	mask := BitMask(from) | BitMask(to)
	p.slots[baseSlot(c)] ^= mask
	p.slots[baseSlot(c)+int(k)] ^= mask
}

func (p *Position) removePieceBit(c Color, k PieceKind, sq Square) {
	p.slots[baseSlot(c)] ^= BitMask(sq)
	p.slots[baseSlot(c)+int(k)] ^= BitMask(sq)
}

func (p *Position) addPieceBit(c Color, k PieceKind, sq Square) {
	p.slots[baseSlot(c)] ^= BitMask(sq)
	p.slots[baseSlot(c)+int(k)] ^= BitMask(sq)
}

// castleRookSquares returns the rook's home and post-castle squares for the given side/direction.
func castleRookSquares(mover Color, kingSide bool) (from, to Square) {
	switch {
	case mover == White && kingSide:
		return H1, F1
	case mover == White && !kingSide:
		return A1, D1
	case mover == Black && kingSide:
		return H8, F8
	default:
		return A8, D8
	}
}

// enPassantCaptureSquare returns the square of the pawn captured en passant, given the capturing
// pawn's target square and mover color: one rank "behind" the target from the mover's direction
// of travel.
func enPassantCaptureSquare(mover Color, to Square) Square {
	if mover == White {
		return step(BitMask(to), DirS).LSB()
	}
	return step(BitMask(to), DirN).LSB()
}

// doublePushEnPassantSquare returns the square a capturing pawn would move to in order to take en
// passant against this double push -- the square the pawn passed over.
func doublePushEnPassantSquare(mover Color, from Square) Square {
	if mover == White {
		return step(BitMask(from), DirN).LSB()
	}
	return step(BitMask(from), DirS).LSB()
}

// MakeMove mutates the position to reflect playing m. Always succeeds -- legality (i.e. whether
// the mover's own king ends up attacked) is not checked here; call DefendersKingIsInCheck after
// and UnmakeMove to back out if so. On return, piece placement, en-passant target, and castling
// rights are all internally consistent and ready for the next GenerateMoves/MakeMove cycle.
func (p *Position) MakeMove(m Move) {
	mover := p.Turn()
	defender := mover.Opponent()

	// (1) Push prior extras for unmake.
	p.extrasHistory = append(p.extrasHistory, p.extras())

	extras := p.extras()

	// (2) Clear en passant + "castled on last move" flags; the edits below re-set them if needed.
	extras &^= uint64(extrasEnPassantMask) << extrasEnPassantShift
	extras &^= extrasCastleKingSideFlag | extrasCastleQueenSideFlag

	// (3) Increment total plies (FEN bookkeeping only).
	tp := (extras >> extrasTotalPliesShift) & extrasTotalPliesMask
	tp = (tp + 1) & extrasTotalPliesMask
	extras = clearField(extras, extrasTotalPliesShift, extrasTotalPliesMask) | (tp << extrasTotalPliesShift)

	resetStatic := false

	// (4) Apply move-specific edits.
	switch m.Type() {
	case MoveQuiet:
		p.movePieceBit(mover, m.Moved(), m.From(), m.To())

	case MoveCapture:
		p.removePieceBit(defender, m.Captured(), m.To())
		p.movePieceBit(mover, m.Moved(), m.From(), m.To())
		resetStatic = true

	case MovePawnPush:
		p.movePieceBit(mover, Pawn, m.From(), m.To())
		resetStatic = true

	case MovePawnDouble:
		p.movePieceBit(mover, Pawn, m.From(), m.To())
		resetStatic = true
		ep := doublePushEnPassantSquare(mover, m.From())
		extras = clearField(extras, extrasEnPassantShift, extrasEnPassantMask) | (uint64(ep) << extrasEnPassantShift)

	case MoveEnPassant:
		p.movePieceBit(mover, Pawn, m.From(), m.To())
		p.removePieceBit(defender, Pawn, enPassantCaptureSquare(mover, m.To()))
		resetStatic = true

	case MoveCastleKingSide, MoveCastleQueenSide:
		kingSide := m.Type() == MoveCastleKingSide
		p.movePieceBit(mover, King, m.From(), m.To())
		rookFrom, rookTo := castleRookSquares(mover, kingSide)
		p.movePieceBit(mover, Rook, rookFrom, rookTo)
		if kingSide {
			extras |= extrasCastleKingSideFlag
		} else {
			extras |= extrasCastleQueenSideFlag
		}

	case MovePromotion:
		if m.Captured() != NoPiece {
			p.removePieceBit(defender, m.Captured(), m.To())
		}
		p.removePieceBit(mover, Pawn, m.From())
		p.addPieceBit(mover, m.Promotion(), m.To())
		resetStatic = true
	}

	sp := (extras >> extrasStaticPliesShift) & extrasStaticPliesMask
	if resetStatic {
		sp = 0
	} else if sp < extrasStaticPliesMax {
		sp++
	}
	extras = clearField(extras, extrasStaticPliesShift, extrasStaticPliesMask) | (sp << extrasStaticPliesShift)

	// (5) Flip side to move.
	p.whiteToMove = !p.whiteToMove
	p.attackingSlot, p.defendingSlot = p.defendingSlot, p.attackingSlot

	// (6) Auto-revoke castling rights for any king/rook that left, or was captured on, a home
	// square. A single AND against both the source and target square's clear-mask handles every
	// move type uniformly -- see castleClearMask in castling.go.
	rights := CastlingRight((extras >> extrasCastlingShift) & extrasCastlingMask)
	rights &= castleClearMask[m.From()] & castleClearMask[m.To()]
	extras = clearField(extras, extrasCastlingShift, extrasCastlingMask) | (uint64(rights) << extrasCastlingShift)

	p.setExtras(extras)
}

// UnmakeMove exactly reverses a previous MakeMove(m), provided calls are properly nested (LIFO).
func (p *Position) UnmakeMove(m Move) {
	// mover is still reachable as the defending side post-make (the side that just moved).
	mover := colorOfSlot(p.defendingSlot)
	defender := mover.Opponent()

	switch m.Type() {
	case MoveQuiet:
		p.movePieceBit(mover, m.Moved(), m.To(), m.From())

	case MoveCapture:
		p.movePieceBit(mover, m.Moved(), m.To(), m.From())
		p.addPieceBit(defender, m.Captured(), m.To())

	case MovePawnPush, MovePawnDouble:
		p.movePieceBit(mover, Pawn, m.To(), m.From())

	case MoveEnPassant:
		p.movePieceBit(mover, Pawn, m.To(), m.From())
		p.addPieceBit(defender, Pawn, enPassantCaptureSquare(mover, m.To()))

	case MoveCastleKingSide, MoveCastleQueenSide:
		kingSide := m.Type() == MoveCastleKingSide
		p.movePieceBit(mover, King, m.To(), m.From())
		rookFrom, rookTo := castleRookSquares(mover, kingSide)
		p.movePieceBit(mover, Rook, rookTo, rookFrom)

	case MovePromotion:
		p.removePieceBit(mover, m.Promotion(), m.To())
		p.addPieceBit(mover, Pawn, m.From())
		if m.Captured() != NoPiece {
			p.addPieceBit(defender, m.Captured(), m.To())
		}
	}

	p.whiteToMove = !p.whiteToMove
	p.attackingSlot, p.defendingSlot = p.defendingSlot, p.attackingSlot

	n := len(p.extrasHistory) - 1
	p.setExtras(p.extrasHistory[n])
	p.extrasHistory = p.extrasHistory[:n]
}

func clearField(v uint64, shift uint, mask uint64) uint64 {
	return v &^ (mask << shift)
}
