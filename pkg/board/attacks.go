package board

// bishopDirections and rookDirections list the sliding directions relevant to each officer.
var (
	bishopDirections = [4]Direction{DirNW, DirNE, DirSE, DirSW}
	rookDirections    = [4]Direction{DirN, DirS, DirE, DirW}
)

// firstBlocker walks from sq in direction d, one step at a time, and returns the first occupied
// square encountered (per occ), or ok=false if the ray runs off the board first.
func firstBlocker(sq Square, d Direction, occ Bitboard) (Square, bool) {
	cur := BitMask(sq)
	for i := 0; i < 7; i++ {
		cur = step(cur, d)
		if cur == EmptyBitboard {
			return ZeroSquare, false
		}
		if cur&occ != 0 {
			return cur.LSB(), true
		}
	}
	return ZeroSquare, false
}

// IsAttacked returns true iff sq is attacked by any piece of color by, given the current
// occupancy. Does not consider en passant (a square is never "attacked" via en passant).
func (p *Position) IsAttacked(by Color, sq Square) bool {
	// Pawns: by the symmetry of the capture pattern, the squares from which a by-colored pawn
	// attacks sq are exactly PawnAttacksFrom(by.Opponent(), sq).
	if PawnAttacksFrom(by.Opponent(), sq)&p.piece(by, Pawn) != 0 {
		return true
	}
	if KnightAttacks(sq)&p.piece(by, Knight) != 0 {
		return true
	}
	if KingAttacks(sq)&p.piece(by, King) != 0 {
		return true
	}

	occ := p.Occupied()

	if bishopsQueens := p.piece(by, Bishop) | p.piece(by, Queen); bishopsQueens != 0 && BishopRayAttacks(sq)&bishopsQueens != 0 {
		for _, d := range bishopDirections {
			if blocker, ok := firstBlocker(sq, d, occ); ok && bishopsQueens.IsSet(blocker) {
				return true
			}
		}
	}
	if rooksQueens := p.piece(by, Rook) | p.piece(by, Queen); rooksQueens != 0 && RookRayAttacks(sq)&rooksQueens != 0 {
		for _, d := range rookDirections {
			if blocker, ok := firstBlocker(sq, d, occ); ok && rooksQueens.IsSet(blocker) {
				return true
			}
		}
	}
	return false
}

// IsChecked returns true iff the king of color c is attacked by the opponent. Convenient shortcut
// for IsAttacked(c.Opponent(), kingSquare).
func (p *Position) IsChecked(c Color) bool {
	return p.IsAttacked(c.Opponent(), p.piece(c, King).LSB())
}

func colorOfSlot(slot int) Color {
	if slot == slotWhiteBase {
		return White
	}
	return Black
}

// DefendersKingIsInCheck returns true iff the side that just made a move (i.e. the side that is
// NOT to move now) has its king attacked. Called immediately after MakeMove to reject a move that
// left -- or castled through -- the mover's own king in check.
func (p *Position) DefendersKingIsInCheck() bool {
	mover := colorOfSlot(p.defendingSlot)
	attacker := colorOfSlot(p.attackingSlot)

	if p.IsAttacked(attacker, p.piece(mover, King).LSB()) {
		return true
	}

	kingSide, queenSide := p.CastledOnLastMove()
	if !kingSide && !queenSide {
		return false
	}

	home, pass := E1, F1
	if mover == Black {
		home, pass = E8, F8
	}
	if queenSide {
		pass = D1
		if mover == Black {
			pass = D8
		}
	}
	return p.IsAttacked(attacker, home) || p.IsAttacked(attacker, pass)
}
